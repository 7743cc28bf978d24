package databases

// Collection names
const (
	MatterName       = "matters"
	CaseName         = "cases"
	CasePartyName    = "case_parties"
	CaseHearingName  = "case_hearings"
	CaseDocumentName = "case_documents"
	CaseNoteName     = "case_notes"
	CaseTaskName     = "case_tasks"
)

// NewMatterDatabase initializes the matters collection with the provided db connection
func NewMatterDatabase(db DatabaseHelper) RecordDatabase {
	return NewRecordDatabase(db, MatterName)
}

// NewCaseDatabase initializes the cases collection with the provided db connection
func NewCaseDatabase(db DatabaseHelper) RecordDatabase {
	return NewRecordDatabase(db, CaseName)
}
