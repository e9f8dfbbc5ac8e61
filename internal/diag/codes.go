package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// module loading
	IOInfo            Code = 1000
	IOReadFailed      Code = 1001
	IOMalformedModule Code = 1002
	IOSchemaVersion   Code = 1003
	IODuplicateModule Code = 1004
	IOWriteFailed     Code = 1005

	// mapping tree
	MapInfo              Code = 2000
	MapUnresolvedForward Code = 2001
	MapDuplicateType     Code = 2002
	MapDuplicateMember   Code = 2003

	// difference engine
	DifInfo         Code = 3000
	DifIncompatible Code = 3001
	DifCompatible   Code = 3002
	DifMustExist    Code = 3003
	DifExempted     Code = 3004

	// facade synthesis
	FacInfo                Code = 4000
	FacMissingType         Code = 4001
	FacAmbiguousType       Code = 4002
	FacVersionMismatch     Code = 4003
	FacDuplicateForward    Code = 4004
	FacDuplicateContract   Code = 4005
	FacInclusionIgnored    Code = 4006
	FacPreferenceOverride  Code = 4007
	FacPartialMismatch     Code = 4008
	FacPreferenceUnmatched Code = 4009
	FacNoForwards          Code = 4010

	// configuration
	CfgInfo           Code = 5000
	CfgInvalidValue   Code = 5001
	CfgUnknownRule    Code = 5002
	CfgBadPreference  Code = 5003
	CfgConflictingOpt Code = 5004
)

var (
	codeDescription = map[Code]string{
		UnknownCode:            "Unknown error",
		IOInfo:                 "Module loading information",
		IOReadFailed:           "Module file could not be read",
		IOMalformedModule:      "Malformed module metadata",
		IOSchemaVersion:        "Unsupported module schema version",
		IODuplicateModule:      "Module loaded twice",
		IOWriteFailed:          "Output could not be written",
		MapInfo:                "Mapping information",
		MapUnresolvedForward:   "Type forward target could not be resolved",
		MapDuplicateType:       "Type defined more than once on one side",
		MapDuplicateMember:     "Member defined more than once on one type",
		DifInfo:                "Difference information",
		DifIncompatible:        "Incompatible API difference",
		DifCompatible:          "Compatible API difference",
		DifMustExist:           "API missing from the implementation",
		DifExempted:            "Difference suppressed by exemption",
		FacInfo:                "Facade information",
		FacMissingType:         "Contract type not found in any seed",
		FacAmbiguousType:       "Contract type defined in multiple seeds",
		FacVersionMismatch:     "Seed version does not satisfy the version policy",
		FacDuplicateForward:    "Type forward already exists",
		FacDuplicateContract:   "Multiple contracts share a name",
		FacInclusionIgnored:    "Inclusion contract has no matching contract",
		FacPreferenceOverride:  "Seed type preference overridden",
		FacPartialMismatch:     "Partial facade identity does not match the contract",
		FacPreferenceUnmatched: "Preferred seed does not define the type",
		FacNoForwards:          "Facade contains no forwards",
		CfgInfo:                "Configuration information",
		CfgInvalidValue:        "Invalid configuration value",
		CfgUnknownRule:         "Unknown rule identifier",
		CfgBadPreference:       "Malformed seed type preference",
		CfgConflictingOpt:      "Conflicting options",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("MAP%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("DIF%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("FAC%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("CFG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
