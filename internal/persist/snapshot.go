package persist

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"

	"github.com/towncore/townsim/internal/component"
	"github.com/towncore/townsim/internal/core/ecs"
	"github.com/towncore/townsim/internal/world"
)

// PersonRow is the stored form of a world.Person.
type PersonRow struct {
	ID                int64
	Name              string
	AgeDays           int64
	Gender            string
	InstructionLevel  string
	InstructionArea   *string // experience only
	InstructionMonths int32
	WishedArea        string
	WorkingArea       *string
	Intelligence      int16
	Beauty            int16
	Speak             int16
	Health            int16
	Alive             bool
	DeathTick         *int64
	OriginalFamily    *int64
	ActualFamily      *int64
}

// FamilyRow is the stored form of a world.Family.
type FamilyRow struct {
	ID       int64
	FatherID int64
	MotherID int64
	Children []int64
	Age      int64
}

// Snapshot is a read-only copy of both registries at one tick.
type Snapshot struct {
	Tick     uint64
	Persons  []PersonRow
	Families []FamilyRow
	Checksum [32]byte // over persons and families, not the tick
}

// BuildSnapshot copies the registries of ws. It reads only; ws is not modified.
func BuildSnapshot(ws *world.State, tick uint64) *Snapshot {
	s := &Snapshot{
		Tick:     tick,
		Persons:  make([]PersonRow, 0, ws.Persons().Len()),
		Families: make([]FamilyRow, 0, ws.Families().Len()),
	}
	ws.Persons().Each(func(_ ecs.EntityID, p *world.Person) {
		s.Persons = append(s.Persons, personRow(p))
	})
	ws.Families().Each(func(_ ecs.EntityID, f *world.Family) {
		s.Families = append(s.Families, familyRow(f))
	})
	s.Checksum = checksum(s)
	return s
}

func personRow(p *world.Person) PersonRow {
	attrs := p.Attributes()
	instr := p.Instruction()
	row := PersonRow{
		ID:                int64(p.ID()),
		Name:              p.Name(),
		AgeDays:           int64(p.Age()),
		Gender:            p.Gender().String(),
		InstructionLevel:  instr.Level.String(),
		InstructionMonths: instr.Months,
		WishedArea:        p.WishedArea().String(),
		Intelligence:      int16(attrs.Intelligence),
		Beauty:            int16(attrs.Beauty),
		Speak:             int16(attrs.Speak),
		Health:            int16(attrs.Health),
		Alive:             p.Alive(),
		OriginalFamily:    optionalID(p.OriginalFamily()),
		ActualFamily:      optionalID(p.ActualFamily()),
	}
	if instr.Level == component.LevelExperience {
		area := instr.Area.String()
		row.InstructionArea = &area
	}
	if area, ok := p.WorkingArea(); ok {
		s := area.String()
		row.WorkingArea = &s
	}
	if tick, dead := p.DeathTick(); dead {
		t := int64(tick)
		row.DeathTick = &t
	}
	return row
}

func familyRow(f *world.Family) FamilyRow {
	children := f.Children()
	row := FamilyRow{
		ID:       int64(f.ID()),
		FatherID: int64(f.Father()),
		MotherID: int64(f.Mother()),
		Children: make([]int64, len(children)),
		Age:      int64(f.Age()),
	}
	for i, c := range children {
		row.Children[i] = int64(c)
	}
	return row
}

func optionalID(id ecs.EntityID) *int64 {
	if id.IsZero() {
		return nil
	}
	v := int64(id)
	return &v
}

func checksum(s *Snapshot) [32]byte {
	h, _ := blake2b.New256(nil) // only fails for keys longer than 64 bytes
	for _, p := range s.Persons {
		writeInt(h, p.ID)
		writeString(h, p.Name)
		writeInt(h, p.AgeDays)
		writeString(h, p.Gender)
		writeString(h, p.InstructionLevel)
		writeOptString(h, p.InstructionArea)
		writeInt(h, int64(p.InstructionMonths))
		writeString(h, p.WishedArea)
		writeOptString(h, p.WorkingArea)
		writeInt(h, int64(p.Intelligence)<<48|int64(p.Beauty)<<32|int64(p.Speak)<<16|int64(p.Health))
		writeBool(h, p.Alive)
		writeOptInt(h, p.DeathTick)
		writeOptInt(h, p.OriginalFamily)
		writeOptInt(h, p.ActualFamily)
	}
	for _, f := range s.Families {
		writeInt(h, f.ID)
		writeInt(h, f.FatherID)
		writeInt(h, f.MotherID)
		writeInt(h, int64(len(f.Children)))
		for _, c := range f.Children {
			writeInt(h, c)
		}
		writeInt(h, f.Age)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}

func writeInt(h hash.Hash, v int64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	h.Write(buf[:])
}

func writeString(h hash.Hash, s string) {
	writeInt(h, int64(len(s)))
	h.Write([]byte(s))
}

func writeBool(h hash.Hash, b bool) {
	if b {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
}

func writeOptString(h hash.Hash, s *string) {
	writeBool(h, s != nil)
	if s != nil {
		writeString(h, *s)
	}
}

func writeOptInt(h hash.Hash, v *int64) {
	writeBool(h, v != nil)
	if v != nil {
		writeInt(h, *v)
	}
}
