package permission

import "github.com/saaabeeer7719-creator/sehatech-full-system/internal/model"

// Capability keys. The set is closed: runtime edits can only flip values
// for keys listed here, never add new ones.
const (
	KeyViewDashboard     = "viewDashboard"
	KeyViewAppointments  = "viewAppointments"
	KeyAddAppointment    = "addAppointment"
	KeyEditAppointment   = "editAppointment"
	KeyCancelAppointment = "cancelAppointment"
	KeyViewPatients      = "viewPatients"
	KeyAddPatient        = "addPatient"
	KeyEditPatient       = "editPatient"
	KeyDeletePatient     = "deletePatient"
	KeyViewDoctors       = "viewDoctors"
	KeyAddDoctor         = "addDoctor"
	KeyEditDoctor        = "editDoctor"
	KeyDeleteDoctor      = "deleteDoctor"
	KeyViewBilling       = "viewBilling"
	KeyAddTransaction    = "addTransaction"
	KeyViewReports       = "viewReports"
	KeyGenerateReport    = "generateReport"
	KeyViewAnalytics     = "viewAnalytics"
	KeyManageUsers       = "manageUsers"
	KeyAddUser           = "addUser"
	KeyEditUser          = "editUser"
	KeyDeleteUser        = "deleteUser"
	KeyManageSettings    = "manageSettings"
	KeyUseChat           = "useChat"
	KeyViewAuditLog      = "viewAuditLog"
)

// Keys lists every capability key in a stable display order.
var Keys = []string{
	KeyViewDashboard,
	KeyViewAppointments,
	KeyAddAppointment,
	KeyEditAppointment,
	KeyCancelAppointment,
	KeyViewPatients,
	KeyAddPatient,
	KeyEditPatient,
	KeyDeletePatient,
	KeyViewDoctors,
	KeyAddDoctor,
	KeyEditDoctor,
	KeyDeleteDoctor,
	KeyViewBilling,
	KeyAddTransaction,
	KeyViewReports,
	KeyGenerateReport,
	KeyViewAnalytics,
	KeyManageUsers,
	KeyAddUser,
	KeyEditUser,
	KeyDeleteUser,
	KeyManageSettings,
	KeyUseChat,
	KeyViewAuditLog,
}

// KnownKey reports whether key is in the registry.
func KnownKey(key string) bool {
	_, ok := keySet[key]
	return ok
}

var keySet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(Keys))
	for _, k := range Keys {
		s[k] = struct{}{}
	}
	return s
}()

// Set is a role's full capability map. Every registry key is present.
type Set map[string]bool

func (s Set) clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func allTrue() Set {
	s := make(Set, len(Keys))
	for _, k := range Keys {
		s[k] = true
	}
	return s
}

func allFalse() Set {
	s := make(Set, len(Keys))
	for _, k := range Keys {
		s[k] = false
	}
	return s
}

func withGranted(granted ...string) Set {
	s := allFalse()
	for _, k := range granted {
		s[k] = true
	}
	return s
}

// Role defaults. Admin is all-true and kept immutable by the service;
// receptionist covers front-desk work minus destructive and reporting
// actions; doctor is read-mostly plus status edits and chat.
var defaults = map[model.Role]Set{
	model.RoleAdmin: allTrue(),
	model.RoleReceptionist: withGranted(
		KeyViewDashboard,
		KeyViewAppointments,
		KeyAddAppointment,
		KeyEditAppointment,
		KeyCancelAppointment,
		KeyViewPatients,
		KeyAddPatient,
		KeyEditPatient,
		KeyViewDoctors,
		KeyViewBilling,
		KeyAddTransaction,
		KeyManageUsers,
		KeyAddUser,
		KeyEditUser,
		KeyManageSettings,
		KeyUseChat,
	),
	model.RoleDoctor: withGranted(
		KeyViewDashboard,
		KeyViewAppointments,
		KeyEditAppointment,
		KeyViewPatients,
		KeyUseChat,
	),
}

// Defaults returns a copy of the built-in capability set for role. Unknown
// roles get an all-false set.
func Defaults(role model.Role) Set {
	if s, ok := defaults[role]; ok {
		return s.clone()
	}
	return allFalse()
}
