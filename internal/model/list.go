package model

// List describes one mailing list whose monthly archives are mirrored.
// Lists are constructed once from configuration and read-only afterwards.
type List struct {
	// Name is the list identifier on the archive server, e.g. "golang-nuts".
	Name string `mapstructure:"name" yaml:"name"`

	// ArchiveName overrides the name used for local storage and the
	// consolidated archive file. Defaults to Name.
	ArchiveName string `mapstructure:"archive_name" yaml:"archive_name"`

	// Server overrides the process-wide archive server base URL.
	Server string `mapstructure:"server" yaml:"server"`

	// Years overrides the process-wide set of years to mirror.
	Years []int `mapstructure:"years" yaml:"years"`

	// Username identifies the subscriber for lists with private archives.
	Username string `mapstructure:"username" yaml:"username"`

	// Password is the private-archive password, stored inline.
	Password string `mapstructure:"password" yaml:"password"`

	// PasswordKey names an OS keyring entry holding the password, for
	// setups that keep secrets out of the config file. Ignored when
	// Password is set.
	PasswordKey string `mapstructure:"password_key" yaml:"password_key"`
}

// Archive returns the name used for the list's storage directory and
// consolidated archive, falling back to the list name.
func (l List) Archive() string {
	if l.ArchiveName != "" {
		return l.ArchiveName
	}
	return l.Name
}

// ArtifactName returns the file name of the consolidated archive.
func (l List) ArtifactName() string {
	return l.Archive() + ".mbox"
}

// NeedsAuth reports whether the list is configured for authenticated
// (private archive) retrieval.
func (l List) NeedsAuth() bool {
	return l.Username != "" || l.Password != "" || l.PasswordKey != ""
}

// Credentials carry a resolved login identity for a private archive.
type Credentials struct {
	Username string
	Password string
}
