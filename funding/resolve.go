package funding

import (
	"sort"
	"strings"
)

// ResolveDonorInfo produces the organization's effective donor list for
// display: org-level donors first (alphabetical), then donors that fund
// only through at least one project (alphabetical). The ordering is a
// display contract, not a filter contract.
func ResolveDonorInfo(org Organization) []DonorInfo {
	orgLevel := org.Donors()
	orgLevelSet := donorSet(orgLevel)

	var projectOnly []string
	projectOnlySet := make(map[string]bool)
	for _, p := range org.Projects {
		for _, donor := range p.Donors() {
			key := canonical(donor)
			if orgLevelSet[key] || projectOnlySet[key] {
				continue
			}
			projectOnlySet[key] = true
			projectOnly = append(projectOnly, donor)
		}
	}

	sort.Strings(orgLevel)
	sort.Strings(projectOnly)

	infos := make([]DonorInfo, 0, len(orgLevel)+len(projectOnly))
	for _, donor := range orgLevel {
		infos = append(infos, DonorInfo{Donor: donor, IsOrgLevel: true})
	}
	for _, donor := range projectOnly {
		infos = append(infos, DonorInfo{Donor: donor, IsOrgLevel: false})
	}
	return infos
}

// AgenciesForDonor returns the deduplicated, alphabetically sorted agency
// names attached to the given agencies for one donor. Donor matching is
// exact after trimming, per the source data's canonical country strings.
// The "Unspecified Agency" sentinel is excluded: it marks funding without
// a named department and has no place in a display list.
func AgenciesForDonor(agencies []Agency, donor string) []string {
	donor = strings.TrimSpace(donor)
	seen := make(map[string]bool)
	var names []string
	for _, a := range agencies {
		if strings.TrimSpace(a.Donor) != donor {
			continue
		}
		name := strings.TrimSpace(a.Name)
		if name == "" || name == UnspecifiedAgency {
			continue
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OrgAgenciesForDonor returns the organization-level agency names
// financing the organization for one donor.
func OrgAgenciesForDonor(org Organization, donor string) []string {
	return AgenciesForDonor(org.Agencies, donor)
}

// ProjectAgenciesForDonor returns the project-level agency names
// financing the project for one donor.
func ProjectAgenciesForDonor(p Project, donor string) []string {
	return AgenciesForDonor(p.Agencies, donor)
}

// DonorVocabulary returns every donor country appearing anywhere in the
// graph (org-level or project-level), deduplicated case-insensitively and
// sorted alphabetically.
func DonorVocabulary(orgs []Organization) []string {
	seen := make(map[string]bool)
	var donors []string
	for _, org := range orgs {
		for _, donor := range org.CombinedDonors() {
			key := canonical(donor)
			if seen[key] {
				continue
			}
			seen[key] = true
			donors = append(donors, donor)
		}
	}
	sort.Strings(donors)
	return donors
}
