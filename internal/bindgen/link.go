package bindgen

// UpdateComponentConfigs finalizes every component's config so that name
// resolution works across component boundaries:
//
//  1. missing package names default to `uniffi.<namespace>`;
//  2. missing cdylib names default to the build-wide cdylib if given, else
//     `uniffi_<namespace>`;
//  3. each config's external package map is completed with every *other*
//     component's crate name -> resolved package, never overwriting an entry
//     the user supplied explicitly.
//
// The crate->package snapshot is computed once before any insertion, so the
// result does not depend on component order.
func UpdateComponentConfigs(components []*Component, cdylib string) {
	for _, c := range components {
		if c.Config.PackageName == "" {
			c.Config.PackageName = c.Config.EffectivePackage(c.CI.Namespace)
		}
		if c.Config.CdylibName == "" {
			if cdylib != "" {
				c.Config.CdylibName = cdylib
			} else {
				c.Config.CdylibName = "uniffi_" + c.CI.Namespace
			}
		}
	}

	packages := make(map[string]string, len(components))
	for _, c := range components {
		packages[c.CI.CrateName] = c.Config.PackageName
	}

	for _, c := range components {
		if c.Config.ExternalPackages == nil {
			c.Config.ExternalPackages = make(map[string]string, len(packages)-1)
		}
		for crate, pkg := range packages {
			if crate == c.CI.CrateName {
				continue // a component never maps itself
			}
			if _, ok := c.Config.ExternalPackages[crate]; !ok {
				c.Config.ExternalPackages[crate] = pkg
			}
		}
	}
}
