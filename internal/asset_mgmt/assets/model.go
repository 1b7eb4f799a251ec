package assets

const (
	StatusAvailable        = "Available"
	StatusInUse            = "In Use"
	StatusUnderMaintenance = "Under Maintenance"
	StatusDisposed         = "Disposed"
)

// Statuses は表示順
var Statuses = []string{StatusAvailable, StatusInUse, StatusUnderMaintenance, StatusDisposed}

func ValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

const (
	ConditionGood = "Good"
	ConditionPoor = "Poor"
)

const DateLayout = "2006-01-02"
