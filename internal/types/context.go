package types

import "sort"

// Urgency is the coarse urgency level detected in a text.
type Urgency string

const (
	UrgencyRoutine Urgency = "routine"
	UrgencyUrgent  Urgency = "urgent"
)

// Setting is the clinical setting detected in a text.
type Setting string

const (
	SettingUnknown    Setting = "unknown"
	SettingEmergency  Setting = "emergency"
	SettingICU        Setting = "icu"
	SettingSurgical   Setting = "surgical"
	SettingInpatient  Setting = "inpatient"
	SettingOutpatient Setting = "outpatient"
)

// MedicalContext is the domain profile of a single text. It is rebuilt for
// every analysed text and never shared between documents.
type MedicalContext struct {
	Specialties map[string]float64 // specialty -> fraction of its keywords present
	Conditions  []string
	Procedures  []string
	Medications []string
	Urgency     Urgency
	Setting     Setting
}

// SpecialtyScore pairs a specialty with its score.
type SpecialtyScore struct {
	Name  string
	Score float64
}

// NewMedicalContext returns an empty profile with routine urgency and an
// unknown setting.
func NewMedicalContext() *MedicalContext {
	return &MedicalContext{
		Specialties: make(map[string]float64),
		Urgency:     UrgencyRoutine,
		Setting:     SettingUnknown,
	}
}

// Dominant returns specialties scoring strictly above min, highest first.
// Ties are ordered by name so results are deterministic.
func (c *MedicalContext) Dominant(min float64) []SpecialtyScore {
	if c == nil {
		return nil
	}
	out := make([]SpecialtyScore, 0, len(c.Specialties))
	for name, score := range c.Specialties {
		if score > min {
			out = append(out, SpecialtyScore{Name: name, Score: score})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// IsUrgent reports whether any urgent keyword was found.
func (c *MedicalContext) IsUrgent() bool {
	return c != nil && c.Urgency == UrgencyUrgent
}
