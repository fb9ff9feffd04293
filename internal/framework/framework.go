// Package framework models the execution-environment descriptor: a target
// framework moniker plus an optional concrete platform identifier.
package framework

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/runbuild/internal/foundation/errors"
)

// Kind is the closed set of execution environments the materializer knows.
type Kind int

const (
	// KindHosted runs through a portable host binary and a dependency manifest.
	KindHosted Kind = iota
	// KindLegacy resolves conflicting assembly versions through binding redirects.
	KindLegacy
)

func (k Kind) String() string {
	switch k {
	case KindLegacy:
		return "legacy"
	case KindHosted:
		return "hosted"
	default:
		return "unknown"
	}
}

// Long identifiers accepted in the "<Identifier>,Version=v<x.y>" form.
var longIdentifiers = map[string]string{
	".netframework":   "net",
	".netcoreapp":     "netcoreapp",
	".netstandard":    "netstandard",
	".netstandardapp": "netstandardapp",
	"dnx":             "dnx",
	"dnxcore":         "dnxcore",
}

// Families whose short folder names carry a dotted version.
var dottedFamilies = map[string]bool{
	"netcoreapp":     true,
	"netstandard":    true,
	"netstandardapp": true,
}

// Families loaded by the legacy assembly loader.
var legacyFamilies = map[string]bool{
	"net": true,
	"dnx": true,
}

// Version is a framework version with up to three components.
type Version struct {
	Major int
	Minor int
	Build int
}

func (v Version) dotted() string {
	s := fmt.Sprintf("%d.%d", v.Major, v.Minor)
	if v.Build > 0 {
		s += "." + strconv.Itoa(v.Build)
	}
	return s
}

// undotted falls back to the dotted form when a component cannot be
// expressed as a single digit.
func (v Version) undotted() string {
	if v.Major > 9 || v.Minor > 9 || v.Build > 9 {
		return v.dotted()
	}
	s := fmt.Sprintf("%d%d", v.Major, v.Minor)
	if v.Build > 0 {
		s += strconv.Itoa(v.Build)
	}
	return s
}

// Framework is a parsed target framework moniker.
type Framework struct {
	Identifier string
	Version    Version
}

// Parse accepts short monikers ("net451", "dnxcore50", "netcoreapp1.0") and
// long ones (".NETFramework,Version=v4.5.1").
func Parse(moniker string) (Framework, error) {
	raw := strings.TrimSpace(moniker)
	if raw == "" {
		return Framework{}, errors.ValidationError("framework moniker is empty").Build()
	}

	if id, ver, ok := strings.Cut(raw, ","); ok {
		short, known := longIdentifiers[strings.ToLower(id)]
		if !known {
			return Framework{}, unknownFramework(moniker)
		}
		ver = strings.TrimSpace(ver)
		ver, found := strings.CutPrefix(ver, "Version=")
		if !found {
			return Framework{}, unknownFramework(moniker)
		}
		v, err := parseDotted(strings.TrimPrefix(ver, "v"))
		if err != nil {
			return Framework{}, unknownFramework(moniker)
		}
		return Framework{Identifier: short, Version: v}, nil
	}

	lower := strings.ToLower(raw)
	split := strings.IndexFunc(lower, func(r rune) bool { return r >= '0' && r <= '9' })
	if split <= 0 {
		return Framework{}, unknownFramework(moniker)
	}
	id, rest := lower[:split], lower[split:]
	if _, known := knownShort(id); !known {
		return Framework{}, unknownFramework(moniker)
	}

	var (
		v   Version
		err error
	)
	if strings.Contains(rest, ".") {
		v, err = parseDotted(rest)
	} else {
		v, err = parseUndotted(rest)
	}
	if err != nil {
		return Framework{}, unknownFramework(moniker)
	}
	return Framework{Identifier: id, Version: v}, nil
}

func knownShort(id string) (string, bool) {
	for _, short := range longIdentifiers {
		if short == id {
			return short, true
		}
	}
	return "", false
}

func unknownFramework(moniker string) error {
	return errors.ValidationError("unsupported framework moniker").
		WithContext("framework", moniker).
		Build()
}

func parseDotted(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) == 0 || len(parts) > 4 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		if i < 3 {
			nums[i] = n
		}
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}

func parseUndotted(s string) (Version, error) {
	if s == "" || len(s) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	nums := make([]int, 3)
	for i, r := range s {
		if r < '0' || r > '9' {
			return Version{}, fmt.Errorf("invalid version %q", s)
		}
		nums[i] = int(r - '0')
	}
	return Version{Major: nums[0], Minor: nums[1], Build: nums[2]}, nil
}

// IsZero reports whether the framework was never parsed.
func (f Framework) IsZero() bool {
	return f.Identifier == ""
}

// Kind returns the execution-environment kind of the framework family.
func (f Framework) Kind() Kind {
	if legacyFamilies[f.Identifier] {
		return KindLegacy
	}
	return KindHosted
}

// ShortFolderName names the compilation output directory ("net451", "netcoreapp1.0").
func (f Framework) ShortFolderName() string {
	if dottedFamilies[f.Identifier] {
		return f.Identifier + f.Version.dotted()
	}
	return f.Identifier + f.Version.undotted()
}

// TwoDigitShortFolderName names the intermediate directory ("net451", "netcoreapp10").
func (f Framework) TwoDigitShortFolderName() string {
	return f.Identifier + f.Version.undotted()
}

func (f Framework) String() string {
	return f.ShortFolderName()
}

// Descriptor pairs a target framework with an optional platform identifier.
type Descriptor struct {
	Framework         Framework
	RuntimeIdentifier string
}

// NewDescriptor parses the moniker and pairs it with rid, which may be empty.
func NewDescriptor(moniker, rid string) (Descriptor, error) {
	fw, err := Parse(moniker)
	if err != nil {
		return Descriptor{}, err
	}
	return Descriptor{Framework: fw, RuntimeIdentifier: strings.TrimSpace(rid)}, nil
}

// Kind returns the execution-environment kind.
func (d Descriptor) Kind() Kind {
	return d.Framework.Kind()
}

// HasRuntime reports whether a concrete platform identifier was supplied.
func (d Descriptor) HasRuntime() bool {
	return d.RuntimeIdentifier != ""
}

// ExecutableSuffix is the platform executable suffix of the target: ".exe"
// for Windows platform identifiers, nothing otherwise. Without a platform
// identifier the host operating system decides.
func (d Descriptor) ExecutableSuffix() string {
	if d.HasRuntime() {
		if strings.HasPrefix(strings.ToLower(d.RuntimeIdentifier), "win") {
			return ".exe"
		}
		return ""
	}
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func (d Descriptor) String() string {
	if d.HasRuntime() {
		return d.Framework.String() + "/" + d.RuntimeIdentifier
	}
	return d.Framework.String()
}
