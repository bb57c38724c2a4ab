package bitfield_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/c64xplusdis/bitfield"
)

var _ = Describe("Match", func() {
	Context("Match and MatchMultiple", func() {
		It("should fail when a fixed field doesn't equal the expected value", func() {
			format := bitfield.Format{
				bitfield.Match{Size: 4, Value: 0b1010},
			}
			_, err := bitfield.Match(format, 0b0001, 4)
			Expect(err).To(MatchError(bitfield.ErrNoMatch))
		})

		It("should succeed when the fixed field matches", func() {
			format := bitfield.Format{
				bitfield.Match{Size: 4, Value: 0b1010},
			}
			_, err := bitfield.Match(format, 0b1010, 4)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should succeed when the value is one of MatchMultiple's set", func() {
			format := bitfield.Format{
				bitfield.MatchMultiple{Size: 2, Values: []uint32{0, 2}},
			}
			_, err := bitfield.Match(format, 0b10, 2)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should fail when the value is outside MatchMultiple's set", func() {
			format := bitfield.Format{
				bitfield.MatchMultiple{Size: 2, Values: []uint32{0, 2}},
			}
			_, err := bitfield.Match(format, 0b01, 2)
			Expect(err).To(MatchError(bitfield.ErrNoMatch))
		})
	})

	Context("Bit, BitMatch, BitArray", func() {
		It("should extract a bit under its name", func() {
			format := bitfield.Format{bitfield.Bit{Name: "p"}}
			fields, err := bitfield.Match(format, 1, 1)
			Expect(err).NotTo(HaveOccurred())
			v, err := fields.Get("p")
			Expect(err).NotTo(HaveOccurred())
			b, err := v.AsBool()
			Expect(err).NotTo(HaveOccurred())
			Expect(b).To(BeTrue())
		})

		It("should fail BitMatch when the bit doesn't equal its expected value", func() {
			format := bitfield.Format{bitfield.BitMatch{Name: "s", Value: true}}
			_, err := bitfield.Match(format, 0, 1)
			Expect(err).To(MatchError(bitfield.ErrNoMatch))
		})

		It("should extract a BitArray LSB-first", func() {
			format := bitfield.Format{bitfield.BitArray{Size: 3, Name: "layout"}}
			fields, err := bitfield.Match(format, 0b101, 3)
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("layout")
			bits, err := v.AsBoolSeq()
			Expect(err).NotTo(HaveOccurred())
			Expect(bits).To(Equal([]bool{true, false, true}))
		})
	})

	Context("Unsigned and Signed", func() {
		It("should store a <=8-bit field as u8", func() {
			format := bitfield.Format{bitfield.Unsigned{Size: 5, Name: "dst"}}
			fields, _ := bitfield.Match(format, 19, 5)
			v, _ := fields.Get("dst")
			u, err := v.AsU8()
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(Equal(uint8(19)))
		})

		It("should store a >8-bit field as u32", func() {
			format := bitfield.Format{bitfield.Unsigned{Size: 16, Name: "cst"}}
			fields, _ := bitfield.Match(format, 0x1234, 16)
			v, _ := fields.Get("cst")
			u, err := v.AsU32()
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(Equal(uint32(0x1234)))
		})

		It("should sign-extend a negative Signed field", func() {
			// -4 encoded in 21 bits
			format := bitfield.Format{bitfield.Signed{Size: 21, Name: "disp"}}
			encoded := uint32(int32(-4)) & ((1 << 21) - 1)
			fields, _ := bitfield.Match(format, encoded, 21)
			v, _ := fields.Get("disp")
			i, err := v.AsI32()
			Expect(err).NotTo(HaveOccurred())
			Expect(i).To(Equal(int32(-4)))
		})

		It("should leave a positive Signed field unchanged", func() {
			format := bitfield.Format{bitfield.Signed{Size: 8, Name: "nop"}}
			fields, _ := bitfield.Match(format, 5, 8)
			v, _ := fields.Get("nop")
			i, _ := v.AsI32()
			Expect(i).To(Equal(int32(5)))
		})
	})

	Context("permissive integer accessors", func() {
		It("should allow reading a u8 field via AsU32", func() {
			format := bitfield.Format{bitfield.Unsigned{Size: 5, Name: "dst"}}
			fields, _ := bitfield.Match(format, 3, 5)
			v, _ := fields.Get("dst")
			u, err := v.AsU32()
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(Equal(uint32(3)))
		})

		It("should allow reading a u32 field via AsU8", func() {
			format := bitfield.Format{bitfield.Unsigned{Size: 16, Name: "cst"}}
			fields, _ := bitfield.Match(format, 0x1234, 16)
			v, _ := fields.Get("cst")
			u, err := v.AsU8()
			Expect(err).NotTo(HaveOccurred())
			Expect(u).To(Equal(uint8(0x34)))
		})
	})

	Context("ordering dependency on s/x/crhi", func() {
		It("should build a Register whose side comes from a prior \"s\" bit", func() {
			format := bitfield.Format{
				bitfield.Bit{Name: "s"},
				bitfield.RegisterField{Size: 5, Name: "dst"},
			}
			// s=1 (side B), dst=3
			opcode := uint32(0b1) | uint32(3)<<1
			fields, err := bitfield.Match(format, opcode, 6)
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("dst")
			r, err := v.AsRegister()
			Expect(err).NotTo(HaveOccurred())
			Expect(r.String()).To(Equal("B3"))
		})

		It("should XOR \"s\" and \"x\" for RegisterCrosspath", func() {
			format := bitfield.Format{
				bitfield.Bit{Name: "s"},
				bitfield.Bit{Name: "x"},
				bitfield.RegisterCrosspath{Size: 5, Name: "src"},
			}
			// s=0 (side A), x=1 (cross) -> side B
			opcode := uint32(0) | uint32(1)<<1 | uint32(7)<<2
			fields, err := bitfield.Match(format, opcode, 9)
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("src")
			r, _ := v.AsRegister()
			Expect(r.String()).To(Equal("B7"))
		})

		It("should build a normalized RegisterPair", func() {
			format := bitfield.Format{
				bitfield.Bit{Name: "s"},
				bitfield.RegisterPair{Size: 5, Name: "dst"},
			}
			opcode := uint32(0) | uint32(5)<<1 // s=0, value=5 (odd)
			fields, err := bitfield.Match(format, opcode, 6)
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("dst")
			r, _ := v.AsRegister()
			Expect(r.String()).To(Equal("A5:A4"))
		})

		It("should use a default crhi of 0 when crhi wasn't matched", func() {
			format := bitfield.Format{
				bitfield.ControlRegisterField{Size: 5, Name: "cr"},
			}
			fields, err := bitfield.Match(format, 0b00000, 5) // AMR
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("cr")
			cr, _ := v.AsControlRegister()
			Expect(cr.String()).To(Equal("AMR"))
		})

		It("should fail ControlRegisterField for an undocumented pair", func() {
			format := bitfield.Format{
				bitfield.ControlRegisterField{Size: 5, Name: "cr"},
			}
			_, err := bitfield.Match(format, 0b11111, 5)
			Expect(err).To(MatchError(bitfield.ErrNoMatch))
		})
	})

	Context("LSDUnit", func() {
		It("should map 0,1,2 to L,S,D", func() {
			format := bitfield.Format{bitfield.LSDUnit{Name: "unit"}}
			for raw, want := range map[uint32]string{0: "L", 1: "S", 2: "D"} {
				fields, err := bitfield.Match(format, raw, 2)
				Expect(err).NotTo(HaveOccurred())
				v, _ := fields.Get("unit")
				u, _ := v.AsUnit()
				Expect(u.String()).To(Equal(want))
			}
		})

		It("should fail on value 3 (M is not an LSD unit)", func() {
			format := bitfield.Format{bitfield.LSDUnit{Name: "unit"}}
			_, err := bitfield.Match(format, 3, 2)
			Expect(err).To(MatchError(bitfield.ErrNoMatch))
		})
	})

	Context("ConditionalOperationField", func() {
		It("should store nil for the unconditional encoding", func() {
			format := bitfield.Format{bitfield.ConditionalOperationField{Name: "predicate"}}
			fields, err := bitfield.Match(format, 0b0000, 4)
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("predicate")
			cond, err := v.AsConditional()
			Expect(err).NotTo(HaveOccurred())
			Expect(cond).To(BeNil())
		})

		It("should decode a real predicate", func() {
			format := bitfield.Format{bitfield.ConditionalOperationField{Name: "predicate"}}
			// creg=0b100 (A1), z=0 -> NonZero(A1)
			fields, err := bitfield.Match(format, 0b0100, 4)
			Expect(err).NotTo(HaveOccurred())
			v, _ := fields.Get("predicate")
			cond, _ := v.AsConditional()
			Expect(cond).NotTo(BeNil())
			Expect(cond.String()).To(Equal("A1"))
		})
	})

	Context("purity", func() {
		// For every (opcode, side) the matcher extracts the same field
		// values across two consecutive runs (pure function).
		It("should return identical fields across repeated runs", func() {
			format := bitfield.Format{
				bitfield.Bit{Name: "s"},
				bitfield.RegisterField{Size: 5, Name: "dst"},
				bitfield.Unsigned{Size: 10, Name: "cst"},
			}
			opcode := uint32(0b1) | uint32(9)<<1 | uint32(321)<<6
			f1, err1 := bitfield.Match(format, opcode, 16)
			f2, err2 := bitfield.Match(format, opcode, 16)
			Expect(err1).NotTo(HaveOccurred())
			Expect(err2).NotTo(HaveOccurred())
			Expect(f1).To(Equal(f2))
		})
	})
})

var _ = Describe("MatchFirst", func() {
	It("should return the first matching format's fields and index", func() {
		formats := []bitfield.Format{
			{bitfield.Match{Size: 4, Value: 0b0001}},
			{bitfield.Match{Size: 4, Value: 0b0010}},
		}
		_, idx, err := bitfield.MatchFirst(formats, 0b0010, 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(idx).To(Equal(1))
	})

	It("should fail when no candidate matches", func() {
		formats := []bitfield.Format{
			{bitfield.Match{Size: 4, Value: 0b0001}},
		}
		_, _, err := bitfield.MatchFirst(formats, 0b1111, 4)
		Expect(err).To(MatchError(bitfield.ErrNoMatch))
	})
})
