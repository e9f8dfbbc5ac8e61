package meta

type (
	ModuleID    uint32
	NamespaceID uint32
	TypeID      uint32
	MemberID    uint32
)

const (
	NoModuleID    ModuleID    = 0
	NoNamespaceID NamespaceID = 0
	NoTypeID      TypeID      = 0
	NoMemberID    MemberID    = 0
)

func (id ModuleID) IsValid() bool    { return id != NoModuleID }
func (id NamespaceID) IsValid() bool { return id != NoNamespaceID }
func (id TypeID) IsValid() bool      { return id != NoTypeID }
func (id MemberID) IsValid() bool    { return id != NoMemberID }
