package salary

import (
	"errors"

	"github.com/centinela/backoffice/internal/payroll"
)

// Source tags where a resolved compensation package came from.
type Source string

const (
	SourceRutOverride         Source = "rut_override"
	SourcePostDefault         Source = "post_default"
	SourceInstallationDefault Source = "installation_default"
)

// ErrNoPackage is returned when neither an override nor any default covers
// the guard.
var ErrNoPackage = errors.New("no compensation package configured for guard")

// Context carries the fully materialized salary records of one guard. The
// store reads all three levels in one snapshot before resolution runs, so a
// concurrent default change cannot mix into the result.
type Context struct {
	GuardID             string
	Override            *payroll.CompensationPackage
	PostDefault         *payroll.CompensationPackage
	InstallationDefault *payroll.CompensationPackage
}

// Resolution is a snapshot of the resolved package plus its provenance.
type Resolution struct {
	Package     payroll.CompensationPackage
	Source      Source
	HasOverride bool
}

type candidate struct {
	source Source
	pkg    *payroll.CompensationPackage
}

// Resolve walks the fallback chain in priority order: a negotiated per-person
// override wins over the post default, which wins over the installation
// default. Lower-priority records are never removed by a higher one taking
// precedence. Pure read; override mutations live in the store.
func Resolve(ctx Context) (Resolution, error) {
	chain := []candidate{
		{SourceRutOverride, ctx.Override},
		{SourcePostDefault, ctx.PostDefault},
		{SourceInstallationDefault, ctx.InstallationDefault},
	}
	for _, c := range chain {
		if c.pkg == nil {
			continue
		}
		return Resolution{
			Package:     *c.pkg,
			Source:      c.source,
			HasOverride: ctx.Override != nil,
		}, nil
	}
	return Resolution{}, ErrNoPackage
}
