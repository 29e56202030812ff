package domain

// Collection names in the document store.
const (
	CollectionUsers           = "users"
	CollectionOrders          = "orders"
	CollectionProducts        = "products"
	CollectionSupportTickets  = "support_tickets"
	CollectionFAQs            = "faqs"
	CollectionSettings        = "settings"
	CollectionAdmins          = "admins"
	CollectionBackups         = "backups"
	CollectionAuthCredentials = "auth_credentials"
)
