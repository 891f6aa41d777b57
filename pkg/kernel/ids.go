package kernel

// UserID is the user pool username. Registration generates it; it is never the e-mail address.
type UserID string

func NewUserID(id string) UserID { return UserID(id) }
func (u UserID) String() string  { return string(u) }
func (u UserID) IsEmpty() bool   { return string(u) == "" }

// IdentityID is a federated identity id scoped to an identity pool.
type IdentityID string

func NewIdentityID(id string) IdentityID { return IdentityID(id) }
func (i IdentityID) String() string      { return string(i) }
func (i IdentityID) IsEmpty() bool       { return string(i) == "" }
