package access

// Capability names one gated operation. Each capability maps to the set of
// access levels that satisfy it. Checks are whitelist membership, not an
// ordinal comparison: admin does not implicitly satisfy a capability unless
// it is listed.
type Capability string

const (
	CapViewCase     Capability = "view_case"
	CapViewUsers    Capability = "view_users"
	CapViewMapping  Capability = "view_mapping"
	CapListFiles    Capability = "list_files"
	CapDownloadFile Capability = "download_file"
	CapUploadFile   Capability = "upload_file"
	CapManageAccess Capability = "manage_access"
	CapManageMapping Capability = "manage_mapping"
)

var capabilities = map[Capability][]Level{
	CapViewCase:      {LevelRead, LevelWrite, LevelAdmin},
	CapViewUsers:     {LevelRead, LevelWrite, LevelAdmin},
	CapViewMapping:   {LevelRead, LevelWrite, LevelAdmin},
	CapListFiles:     {LevelRead, LevelWrite, LevelAdmin},
	CapDownloadFile:  {LevelRead, LevelWrite, LevelAdmin},
	CapUploadFile:    {LevelWrite, LevelAdmin},
	CapManageAccess:  {LevelAdmin},
	CapManageMapping: {LevelAdmin},
}

// Allows reports whether the given level is in the capability's whitelist.
func Allows(cap Capability, level Level) bool {
	for _, l := range capabilities[cap] {
		if l == level {
			return true
		}
	}
	return false
}
