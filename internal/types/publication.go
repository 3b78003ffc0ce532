package types

// PublicationType distinguishes newspapers from magazines in the catalog
type PublicationType string

const (
	PublicationTypeNewspaper PublicationType = "NEWSPAPER"
	PublicationTypeMagazine  PublicationType = "MAGAZINE"
)

func (t PublicationType) Validate() error {
	return validateEnum("publication type", t, []PublicationType{
		PublicationTypeNewspaper,
		PublicationTypeMagazine,
	})
}

// PublicationFrequency is how often an issue is delivered
type PublicationFrequency string

const (
	PublicationFrequencyDaily    PublicationFrequency = "DAILY"
	PublicationFrequencyWeekly   PublicationFrequency = "WEEKLY"
	PublicationFrequencyBiweekly PublicationFrequency = "BIWEEKLY"
	PublicationFrequencyMonthly  PublicationFrequency = "MONTHLY"
)

func (f PublicationFrequency) Validate() error {
	return validateEnum("publication frequency", f, []PublicationFrequency{
		PublicationFrequencyDaily,
		PublicationFrequencyWeekly,
		PublicationFrequencyBiweekly,
		PublicationFrequencyMonthly,
	})
}

// PublicationFilter narrows catalog listings
type PublicationFilter struct {
	*QueryFilter
	IncludeInactive bool             `json:"include_inactive,omitempty" form:"include_inactive"`
	Type            *PublicationType `json:"type,omitempty" form:"type"`
	PublicationIDs  []string         `json:"publication_ids,omitempty" form:"publication_ids"`
}

func NewPublicationFilter() *PublicationFilter {
	return &PublicationFilter{QueryFilter: NewDefaultQueryFilter()}
}

func (f *PublicationFilter) Validate() error {
	if f == nil {
		return nil
	}
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.Type != nil {
		return f.Type.Validate()
	}
	return nil
}
