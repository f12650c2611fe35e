package user

// User is a household profile. All finance data (schedules, transactions,
// debts) is scoped to one profile.
type User struct {
	Id          int
	Uid         string
	Username    string
	DisplayName string
	Settings    Settings
}

type Settings struct {
	Timezone string
	Currency string
}
