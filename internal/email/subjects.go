package email

const (
	subjectWelcomeFmt = "Welcome to LeadScope, %s"
)
