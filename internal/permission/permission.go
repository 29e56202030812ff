// Package permission resolves whether a user may perform an action on an
// admin section. The same pure resolver drives the HTTP guard and the
// menu-affordance pass.
package permission

// Section is an admin area.
type Section string

const (
	SectionProducts  Section = "products"
	SectionUsers     Section = "users"
	SectionSupport   Section = "support"
	SectionOrders    Section = "orders"
	SectionSettings  Section = "settings"
	SectionAnalytics Section = "analytics"
)

// Action is an operation inside a section.
type Action string

const (
	ActionView        Action = "view"
	ActionAdd         Action = "add"
	ActionEdit        Action = "edit"
	ActionDelete      Action = "delete"
	ActionReply       Action = "reply"
	ActionClose       Action = "close"
	ActionPermissions Action = "permissions"
	ActionReports     Action = "reports"
	ActionBackup      Action = "backup"
	ActionImport      Action = "import"
	ActionSystem      Action = "system"
	ActionExport      Action = "export"
	ActionAdvanced    Action = "advanced"
)

// Admin role names known to the role table.
const (
	RoleSuperAdmin      = "super_admin"
	RoleAdmin           = "admin"
	RoleProductsManager = "products_manager"
	RoleSupportManager  = "support_manager"
	RoleOrdersManager   = "orders_manager"
	RoleContentManager  = "content_manager"
)

var sectionOrder = []Section{
	SectionProducts,
	SectionUsers,
	SectionSupport,
	SectionOrders,
	SectionSettings,
	SectionAnalytics,
}

// matrix lists the valid actions of every section, in display order.
var matrix = map[Section][]Action{
	SectionProducts:  {ActionView, ActionAdd, ActionEdit, ActionDelete},
	SectionUsers:     {ActionView, ActionAdd, ActionEdit, ActionDelete, ActionPermissions},
	SectionSupport:   {ActionView, ActionReply, ActionClose, ActionDelete},
	SectionOrders:    {ActionView, ActionEdit, ActionDelete, ActionReports},
	SectionSettings:  {ActionView, ActionEdit, ActionBackup, ActionImport, ActionSystem},
	SectionAnalytics: {ActionView, ActionExport, ActionAdvanced},
}

// Sections returns every section in display order.
func Sections() []Section {
	return append([]Section(nil), sectionOrder...)
}

// Actions returns the valid actions of a section.
func Actions(section Section) []Action {
	return append([]Action(nil), matrix[section]...)
}

// Capability is one (section, action) pair.
type Capability struct {
	Section Section
	Action  Action
}

// Valid reports whether the pair exists in the capability matrix.
func (c Capability) Valid() bool {
	for _, a := range matrix[c.Section] {
		if a == c.Action {
			return true
		}
	}
	return false
}

// SectionGrant is either every action of a section or an explicit set.
type SectionGrant struct {
	All     bool
	Actions map[Action]bool
}

// RoleGrant is either everything or per-section grants.
type RoleGrant struct {
	All      bool
	Sections map[Section]SectionGrant
}

func allOf() SectionGrant { return SectionGrant{All: true} }

func only(actions ...Action) SectionGrant {
	set := make(map[Action]bool, len(actions))
	for _, a := range actions {
		set[a] = true
	}
	return SectionGrant{Actions: set}
}

var roleTable = map[string]RoleGrant{
	RoleSuperAdmin: {All: true},
	// admin runs the console but cannot grant permissions, import backups
	// or touch system settings.
	RoleAdmin: {Sections: map[Section]SectionGrant{
		SectionProducts:  allOf(),
		SectionUsers:     only(ActionView, ActionAdd, ActionEdit, ActionDelete),
		SectionSupport:   allOf(),
		SectionOrders:    allOf(),
		SectionSettings:  only(ActionView, ActionEdit, ActionBackup),
		SectionAnalytics: allOf(),
	}},
	RoleProductsManager: {Sections: map[Section]SectionGrant{
		SectionProducts:  allOf(),
		SectionAnalytics: only(ActionView),
	}},
	RoleSupportManager: {Sections: map[Section]SectionGrant{
		SectionSupport:   allOf(),
		SectionUsers:     only(ActionView),
		SectionAnalytics: only(ActionView),
	}},
	RoleOrdersManager: {Sections: map[Section]SectionGrant{
		SectionOrders:    allOf(),
		SectionUsers:     only(ActionView),
		SectionAnalytics: only(ActionView, ActionExport),
	}},
	RoleContentManager: {Sections: map[Section]SectionGrant{
		SectionProducts: only(ActionView, ActionAdd, ActionEdit),
		SectionSettings: only(ActionView, ActionEdit),
	}},
}

// Grant returns the role table entry for role.
func Grant(role string) (RoleGrant, bool) {
	g, ok := roleTable[role]
	return g, ok
}

// AdminRoles lists the roles present in the role table.
func AdminRoles() []string {
	return []string{RoleSuperAdmin, RoleProductsManager, RoleSupportManager, RoleOrdersManager, RoleContentManager, RoleAdmin}
}

// Overrides are per-user decisions that beat the role table.
type Overrides map[Section]map[Action]bool

// Lookup returns the override for a pair, if one is set.
func (o Overrides) Lookup(section Section, action Action) (bool, bool) {
	actions, ok := o[section]
	if !ok {
		return false, false
	}
	v, ok := actions[action]
	return v, ok
}

// Subject is the part of a user record the resolver reads.
type Subject struct {
	Role      string
	Overrides Overrides
}

// Resolve applies, in order: super_admin, per-user override, role table.
// A nil subject is denied.
func Resolve(s *Subject, section Section, action Action) bool {
	if s == nil {
		return false
	}
	if s.Role == RoleSuperAdmin {
		return true
	}
	if v, ok := s.Overrides.Lookup(section, action); ok {
		return v
	}
	grant, ok := roleTable[s.Role]
	if !ok {
		return false
	}
	if grant.All {
		return true
	}
	sg, ok := grant.Sections[section]
	if !ok {
		return false
	}
	return sg.All || sg.Actions[action]
}

// RoleDefaults expands a role into a full boolean matrix, used to seed the
// override editor. Unknown roles yield all false.
func RoleDefaults(role string) Overrides {
	out := make(Overrides, len(matrix))
	subject := &Subject{Role: role}
	for _, section := range sectionOrder {
		actions := make(map[Action]bool, len(matrix[section]))
		for _, action := range matrix[section] {
			actions[action] = Resolve(subject, section, action)
		}
		out[section] = actions
	}
	return out
}
