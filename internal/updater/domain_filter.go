package updater

import (
	"sort"

	"go.uber.org/zap"
	"sigs.k8s.io/external-dns/endpoint"
)

// GetDomainFilter returns the domain filter applied to the configured domains
func (u *Updater) GetDomainFilter() endpoint.DomainFilterInterface {
	return u.config.DomainFilter
}

// selectRecords builds the sorted list of records matching the domain filter.
func (u *Updater) selectRecords() []DomainRecord {
	records := make([]DomainRecord, 0, len(u.config.Domains))
	for name, id := range u.config.Domains {
		if !u.config.DomainFilter.Match(name) {
			u.logger.Debug("Skipping domain excluded by filter",
				zap.String("domain", name),
				zap.Strings("filters", u.config.DomainFilter.Filters))
			continue
		}
		records = append(records, DomainRecord{Name: name, RecordID: id})
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Name < records[j].Name })

	if len(records) == 0 && len(u.config.Domains) > 0 {
		u.logger.Warn("No domains match the configured filters",
			zap.Strings("filters", u.config.DomainFilter.Filters),
			zap.Int("configured_domains", len(u.config.Domains)))
	}
	return records
}
