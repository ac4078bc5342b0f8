package contracts

type InputFlags struct {
	InputRootDir   string
	OutputRootDir  string
	ConfigFile     string
	OutputFileType string
	Backend        string
	LogFile        string
	LogLevel       string
	Report         string
	Quality        int
	MaxWidth       int
	MaxHeight      int
	Album          bool
}
