package component

// Attributes stores the per-person trait values.
// Pure data, zero methods, copied by value, never shared.
type Attributes struct {
	Intelligence uint8
	Beauty       uint8
	Speak        uint8
	Health       uint8 // 0 = frail, 255 = lives to the maximum lifespan
}
