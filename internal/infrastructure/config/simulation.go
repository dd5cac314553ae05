package config

// SimulationConfig holds the defaults of the simulate command
type SimulationConfig struct {
	// Frames is how long a match runs when --frames is not given
	Frames int `mapstructure:"frames" validate:"min=1"`

	// Seed drives the bot's random choices
	Seed uint64 `mapstructure:"seed"`

	// FrameRate paces realtime runs, in frames per second
	FrameRate int `mapstructure:"frame_rate" validate:"min=1,max=1000"`

	// Record stores the order journal of every run
	Record bool `mapstructure:"record"`
}
