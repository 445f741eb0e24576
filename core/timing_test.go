package core

import "testing"

func TestTimingReferenceValues(t *testing.T) {
	tests := []struct {
		name    string
		flags   EnableFlags
		pclkHz  uint32
		wantCCR uint32
		wantTR  uint32
	}{
		{"36MHz standard", 0, 36000000, 180, 37},
		{"36MHz fast 2:1", FastMode, 36000000, CCRFastMode | 30, 11},
		{"36MHz fast 16:9", FastMode | Duty16x9, 36000000, CCRFastMode | CCRDuty16x9 | 3, 11},
		{"8MHz standard", 0, 8000000, 40, 9},
		{"8MHz fast 2:1", FastMode, 8000000, CCRFastMode | 6, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ccr, trise := TimingFor(tt.flags, tt.pclkHz)
			if ccr != tt.wantCCR {
				t.Errorf("ccr = %#x, want %#x", ccr, tt.wantCCR)
			}
			if trise != tt.wantTR {
				t.Errorf("trise = %d, want %d", trise, tt.wantTR)
			}
		})
	}
}

func TestTimingFieldWidths(t *testing.T) {
	modes := []EnableFlags{0, FastMode, FastMode | Duty16x9}
	for mhz := uint32(2); mhz <= 36; mhz++ {
		for _, flags := range modes {
			ccr, trise := TimingFor(flags, mhz*1000000)
			if ccr&CCRMask == 0 {
				t.Errorf("%d MHz flags %#x: zero clock-control field", mhz, flags)
			}
			if ccr&^(CCRMask|CCRFastMode|CCRDuty16x9) != 0 {
				t.Errorf("%d MHz flags %#x: ccr %#x overflows field", mhz, flags, ccr)
			}
			if trise&^TriseMask != 0 {
				t.Errorf("%d MHz flags %#x: trise %d overflows field", mhz, flags, trise)
			}
		}
	}
}

func TestTimingStandardIgnoresDuty(t *testing.T) {
	ccr1, tr1 := TimingFor(0, 36000000)
	ccr2, tr2 := TimingFor(Duty16x9, 36000000)
	if ccr1 != ccr2 || tr1 != tr2 {
		t.Errorf("duty flag changed standard-mode timing: (%#x,%d) vs (%#x,%d)",
			ccr1, tr1, ccr2, tr2)
	}
}
