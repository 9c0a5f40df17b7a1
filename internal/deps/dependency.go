package deps

import (
	"fmt"
	"strings"
)

// Dependency identifies one published artifact.
type Dependency struct {
	ArtifactID string `json:"artifactId"`
	GroupID    string `json:"groupId"`
	Version    string `json:"version"`
}

// Coordinates returns group:artifact:version.
func (d Dependency) Coordinates() string {
	return d.GroupID + ":" + d.ArtifactID + ":" + d.Version
}

type Format string

const (
	FormatCoords Format = "coords"
	FormatMaven  Format = "maven"
	FormatGradle Format = "gradle"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatCoords, nil
	case FormatCoords, FormatMaven, FormatGradle:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected coords, maven or gradle)", s)
	}
}

func (d Dependency) Format(f Format) string {
	switch f {
	case FormatMaven:
		return fmt.Sprintf("<dependency>\n  <groupId>%s</groupId>\n  <artifactId>%s</artifactId>\n  <version>%s</version>\n</dependency>",
			d.GroupID, d.ArtifactID, d.Version)
	case FormatGradle:
		return fmt.Sprintf("implementation(%q)", d.Coordinates())
	default:
		return d.Coordinates()
	}
}
