package ui

// PulseArt contains the ASCII art for the Pulse logo
var PulseArt = []string{
	`                                                        `,
	`    ██████╗ ██╗   ██╗██╗     ███████╗███████╗          `,
	`    ██╔══██╗██║   ██║██║     ██╔════╝██╔════╝          `,
	`    ██████╔╝██║   ██║██║     ███████╗█████╗            `,
	`    ██╔═══╝ ██║   ██║██║     ╚════██║██╔══╝            `,
	`    ██║     ╚██████╔╝███████╗███████║███████╗          `,
	`    ╚═╝      ╚═════╝ ╚══════╝╚══════╝╚══════╝          `,
	`                                                        `,
	`       Single-file components, compiled to JS           `,
	`                                                        `,
}

// PulseArtCompact is a more compact version for smaller terminals
var PulseArtCompact = []string{
	`┌─┐┬ ┬┬  ┌─┐┌─┐`,
	`├─┘│ ││  └─┐├┤ `,
	`┴  └─┘┴─┘└─┘└─┘`,
	`Single-file components`,
}

// GetArt returns the appropriate ASCII art based on terminal size
func GetArt(width, height int) []string {
	if width < 60 || height < 16 {
		return PulseArtCompact
	}
	return PulseArt
}
