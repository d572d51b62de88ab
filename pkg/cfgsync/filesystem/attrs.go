package filesystem

import (
	"os"
	"os/exec"
)

// AttrClearer strips ACLs and the immutable flag from path and everything
// below it, so the tree can be chmodded or removed.
type AttrClearer func(path string)

type attrTool struct {
	bin  string
	args []string
}

var attrTools = map[string][]attrTool{
	"darwin": {
		{bin: "/bin/chmod", args: []string{"-R", "-N"}},
		{bin: "/usr/bin/chflags", args: []string{"-R", "nouchg"}},
	},
	"linux": {
		{bin: "/bin/setfacl", args: []string{"-R", "-b"}},
		{bin: "/usr/bin/chattr", args: []string{"-R", "-i"}},
	},
}

// attrCommands returns the argv of every clearing tool for goos that
// is installed.
func attrCommands(goos, path string, installed func(bin string) bool) [][]string {
	var cmds [][]string
	for _, tool := range attrTools[goos] {
		if !installed(tool.bin) {
			continue
		}
		argv := append([]string{tool.bin}, tool.args...)
		cmds = append(cmds, append(argv, path))
	}
	return cmds
}

func isInstalled(bin string) bool {
	info, err := os.Stat(bin)
	return err == nil && info.Mode().IsRegular()
}

// HostAttrClearer runs the platform's ACL and immutable-flag tools.
// Failures are ignored: on most trees there is nothing to clear and the
// following chmod or remove reports any real problem.
func HostAttrClearer(goos string) AttrClearer {
	if len(attrTools[goos]) == 0 {
		return nil
	}
	return func(path string) {
		for _, argv := range attrCommands(goos, path, isInstalled) {
			_ = exec.Command(argv[0], argv[1:]...).Run()
		}
	}
}
