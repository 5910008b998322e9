package publish

// DefaultCategory is used when a content cluster has no mapping
const DefaultCategory = "NDIS Support"

var clusterCategories = map[string]string{
	"NDIS Eligibility & Planning": "NDIS Planning",
	"Daily Living Support":        "Daily Living",
	"Community Nursing":           "Health Services",
	"Allied Health Services":      "Allied Health",
	"Community Participation":     "Community",
	"Accommodation Support":       "Accommodation",
	"Specialist Support Services": "Specialist Services",
	"Local NDIS Services":         "Local Services",
	"NDIS Education":              "Education",
}

// CategoryFor maps a content cluster to the category posts are filed under
func CategoryFor(cluster string) string {
	if category, ok := clusterCategories[cluster]; ok {
		return category
	}
	return DefaultCategory
}
