package component

import (
	"fmt"
	"strings"
)

// Gender of a person. Fixed at creation.
type Gender uint8

const (
	Male Gender = iota
	Female
)

func (g Gender) String() string {
	switch g {
	case Male:
		return "male"
	case Female:
		return "female"
	}
	return fmt.Sprintf("gender(%d)", uint8(g))
}

// ParseGender accepts "male"/"female" (case-insensitive) and the short forms "m"/"f".
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	}
	return 0, fmt.Errorf("unknown gender %q", s)
}

// WorkingArea is the field a person wishes to work in, or works in.
// A person specialized in some area needs a job in that area.
type WorkingArea uint8

const (
	Education WorkingArea = iota
	Health
	Technology
	Construction
	Driving
	Homecare
)

var workingAreaNames = [...]string{
	Education:    "education",
	Health:       "health",
	Technology:   "technology",
	Construction: "construction",
	Driving:      "driving",
	Homecare:     "homecare",
}

func (a WorkingArea) String() string {
	if int(a) < len(workingAreaNames) {
		return workingAreaNames[a]
	}
	return fmt.Sprintf("area(%d)", uint8(a))
}

func ParseWorkingArea(s string) (WorkingArea, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range workingAreaNames {
		if name == s {
			return WorkingArea(i), nil
		}
	}
	return 0, fmt.Errorf("unknown working area %q", s)
}

// Level is the tier of an InstructionLevel.
type Level uint8

const (
	LevelNone         Level = iota // babies and young children
	LevelBasic                     // no school, at least 6 years old
	LevelIntermediate              // basic school
	LevelTechnical                 // technical school and above
	LevelAdvanced                  // university
	LevelExperience                // work experience in one area
)

var levelNames = [...]string{
	LevelNone:         "none",
	LevelBasic:        "basic",
	LevelIntermediate: "intermediate",
	LevelTechnical:    "technical",
	LevelAdvanced:     "advanced",
	LevelExperience:   "experience",
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return 0, fmt.Errorf("unknown instruction level %q", s)
}

// InstructionLevel is a person's instruction. Area and Months are only
// meaningful when Level == LevelExperience. A job of some level needs a
// person of the same or higher level.
type InstructionLevel struct {
	Level  Level
	Area   WorkingArea
	Months int32
}

var (
	NoInstruction           = InstructionLevel{Level: LevelNone}
	BasicInstruction        = InstructionLevel{Level: LevelBasic}
	IntermediateInstruction = InstructionLevel{Level: LevelIntermediate}
	TechnicalInstruction    = InstructionLevel{Level: LevelTechnical}
	AdvancedInstruction     = InstructionLevel{Level: LevelAdvanced}
)

// Experience builds the experience level for months of work in area.
func Experience(area WorkingArea, months int32) InstructionLevel {
	return InstructionLevel{Level: LevelExperience, Area: area, Months: months}
}

func (i InstructionLevel) String() string {
	if i.Level == LevelExperience {
		return fmt.Sprintf("experience(%s, %d months)", i.Area, i.Months)
	}
	return i.Level.String()
}
