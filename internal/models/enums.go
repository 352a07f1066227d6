package models

// Option is one member of a closed set of values together with the label
// shown to users.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Enum is a closed set of values. The same table drives request filtering
// and the options rendered on the form pages.
type Enum struct {
	options []Option
	members map[string]struct{}
}

// NewEnum builds an Enum from its options, in display order.
func NewEnum(options ...Option) Enum {
	members := make(map[string]struct{}, len(options))
	for _, opt := range options {
		members[opt.Value] = struct{}{}
	}
	return Enum{options: options, members: members}
}

// Contains reports whether value is a member.
func (e Enum) Contains(value string) bool {
	_, ok := e.members[value]
	return ok
}

// Options returns the members in display order.
func (e Enum) Options() []Option {
	out := make([]Option, len(e.options))
	copy(out, e.options)
	return out
}

// Label returns the display label for value, or value itself when it is not a member.
func (e Enum) Label(value string) string {
	for _, opt := range e.options {
		if opt.Value == value {
			return opt.Label
		}
	}
	return value
}

// Filter keeps the members of values, dropping everything else and any
// repeats. Order of first occurrence is preserved.
func (e Enum) Filter(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if !e.Contains(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Values that exclude every other choice in their set.
const (
	OpportunityPaidWorkOnly = "PAID_WORK_ONLY"
	EmploymentBothFlexible  = "BOTH_FLEXIBLE"
)

var (
	AgeRanges = NewEnum(
		Option{"AGE_18_24", "18-24"},
		Option{"AGE_25_29", "25-29"},
		Option{"AGE_30_34", "30-34"},
		Option{"AGE_35_39", "35-39"},
		Option{"AGE_40_44", "40-44"},
		Option{"AGE_45_54", "45-54"},
		Option{"AGE_55_PLUS", "55+"},
	)

	Genders = NewEnum(
		Option{"male", "Male"},
		Option{"female", "Female"},
		Option{"non_binary", "Non-binary"},
		Option{"trans_man", "Trans man"},
		Option{"trans_woman", "Trans woman"},
		Option{"intersex", "Intersex"},
		Option{"other", "Other"},
		Option{"prefer_not_to_say", "Prefer not to say"},
	)

	HousingAssistance = NewEnum(
		Option{"NO", "No"},
		Option{"JOB_WITH_HOUSING_ONLY", "Yes, job with housing only"},
		Option{"NEED_HELP_MOVING", "I need help in moving"},
		Option{"CONSIDERING_OPTIONS", "I am considering different options"},
	)

	OpportunityTypes = NewEnum(
		Option{"COURSES", "Courses"},
		Option{"ENGLISH_CLASSES", "English classes"},
		Option{"INTERNSHIPS", "Internships"},
		Option{OpportunityPaidWorkOnly, "No, only paid work"},
	)

	EmploymentTypes = NewEnum(
		Option{"FULL_TIME", "Full-time"},
		Option{"PART_TIME", "Part-time"},
		Option{EmploymentBothFlexible, "Both / Flexible"},
	)

	ExperienceRanges = NewEnum(
		Option{"YEARS_0_1", "0-1 years"},
		Option{"YEARS_1_2", "1-2 years"},
		Option{"YEARS_3_5", "3-5 years"},
		Option{"YEARS_6_10", "6-10 years"},
		Option{"YEARS_10_PLUS", "10+ years"},
	)
)
