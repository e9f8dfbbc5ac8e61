package diag

// Location pins a diagnostic to a module and, optionally, a symbol inside it.
type Location struct {
	Module string
	DocID  string
}

func (l Location) String() string {
	switch {
	case l.Module == "" && l.DocID == "":
		return "<run>"
	case l.DocID == "":
		return l.Module
	case l.Module == "":
		return l.DocID
	}
	return l.Module + "!" + l.DocID
}

type Note struct {
	At  Location
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Location
	Notes    []Note
}

func New(sev Severity, code Code, primary Location, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Location, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func NewWarning(code Code, primary Location, msg string) Diagnostic {
	return New(SevWarning, code, primary, msg)
}

func (d Diagnostic) WithNote(at Location, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{At: at, Msg: msg})
	return d
}
