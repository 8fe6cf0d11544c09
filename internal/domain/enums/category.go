package enums

type Category string

const (
	CategorySeeker    Category = "seeker"
	CategoryRecruiter Category = "recruiter"
)

func ParseCategory(raw string) (Category, bool) {
	switch Category(raw) {
	case CategorySeeker, CategoryRecruiter:
		return Category(raw), true
	default:
		return "", false
	}
}
