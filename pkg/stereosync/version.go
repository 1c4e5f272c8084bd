package stereosync

import "github.com/bft-labs/stereosync/pkg/log"

// Version is the current version of the stereosync module.
const Version = "0.3.0"

// ModuleVersions returns the versions of the public modules, keyed by name.
func ModuleVersions() map[string]string {
	return map[string]string{
		"stereosync": Version,
		"log":        log.Version,
	}
}
