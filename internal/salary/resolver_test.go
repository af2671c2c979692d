package salary

import (
	"testing"

	"github.com/centinela/backoffice/internal/payroll"
	"github.com/centinela/backoffice/internal/rates"
)

func pkg(base int64) *payroll.CompensationPackage {
	return &payroll.CompensationPackage{
		BaseSalary:        base,
		GratificationMode: payroll.GratificationAutoPct,
		PensionFundCode:   "habitat",
		HealthSystem:      payroll.HealthPublic,
		ContractType:      rates.ContractIndefinite,
	}
}

func TestResolveFallbackOrder(t *testing.T) {
	override := pkg(900000)
	post := pkg(700000)
	installation := pkg(600000)

	cases := []struct {
		name       string
		ctx        Context
		wantBase   int64
		wantSource Source
	}{
		{"override wins over everything", Context{GuardID: "12345678-9", Override: override, PostDefault: post, InstallationDefault: installation}, 900000, SourceRutOverride},
		{"post default when no override", Context{GuardID: "12345678-9", PostDefault: post, InstallationDefault: installation}, 700000, SourcePostDefault},
		{"installation default as last resort", Context{GuardID: "12345678-9", InstallationDefault: installation}, 600000, SourceInstallationDefault},
	}

	for _, tc := range cases {
		res, err := Resolve(tc.ctx)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if res.Source != tc.wantSource {
			t.Fatalf("%s: expected source %s, got %s", tc.name, tc.wantSource, res.Source)
		}
		if res.Package.BaseSalary != tc.wantBase {
			t.Fatalf("%s: expected base %d, got %d", tc.name, tc.wantBase, res.Package.BaseSalary)
		}
	}
}

func TestResolveHasOverrideFlag(t *testing.T) {
	res, err := Resolve(Context{GuardID: "1-9", Override: pkg(900000), PostDefault: pkg(700000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.HasOverride {
		t.Fatal("expected HasOverride")
	}

	res, err = Resolve(Context{GuardID: "1-9", PostDefault: pkg(700000)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.HasOverride {
		t.Fatal("expected HasOverride false without an active override")
	}
}

func TestResolveSnapshotsTheRecord(t *testing.T) {
	post := pkg(700000)
	res, err := Resolve(Context{GuardID: "1-9", PostDefault: post})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Later edits to the source record must not leak into the snapshot.
	post.BaseSalary = 999999
	if res.Package.BaseSalary != 700000 {
		t.Fatalf("resolution must snapshot the package, got %d", res.Package.BaseSalary)
	}
}

func TestResolveNothingConfigured(t *testing.T) {
	if _, err := Resolve(Context{GuardID: "1-9"}); err != ErrNoPackage {
		t.Fatalf("expected ErrNoPackage, got %v", err)
	}
}
