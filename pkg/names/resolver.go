// Package names maps numeric uids and gids to display names using flat
// colon-delimited map files in the passwd/group format.
package names

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// Resolver holds the id-to-name tables loaded once at startup. The zero value
// resolves every id to its decimal string, which is also the behavior when
// resolution is disabled or a map file could not be read.
type Resolver struct {
	users    map[uint32]string
	groups   map[uint32]string
	disabled bool
}

// Disabled returns a resolver that never loads map files and always renders
// ids numerically.
func Disabled() *Resolver {
	return &Resolver{disabled: true}
}

// Load reads both map files and builds the lookup tables. A missing or
// unreadable file leaves its table empty rather than failing: ids covered by
// that file simply render numerically.
func Load(passwdMapPath, groupMapPath string) *Resolver {
	return &Resolver{
		users:  loadTable(passwdMapPath),
		groups: loadTable(groupMapPath),
	}
}

// loadTable parses one colon-delimited map file: field 1 is the display name,
// field 3 the numeric id. Later duplicate ids overwrite earlier ones, matching
// sequential file-read insertion order.
func loadTable(path string) map[uint32]string {
	table := make(map[uint32]string)

	f, err := os.Open(path)
	if err != nil {
		return table
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), ":")
		if len(fields) < 3 {
			continue
		}
		id, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			continue
		}
		table[uint32(id)] = fields[0]
	}

	return table
}

// Resolve returns the display name for a credential, falling back to the
// decimal id when the tables have no entry or resolution is disabled.
func (r *Resolver) Resolve(id uint32, groupView bool) string {
	if !r.disabled {
		table := r.users
		if groupView {
			table = r.groups
		}
		if name, ok := table[id]; ok {
			return name
		}
	}
	return strconv.FormatUint(uint64(id), 10)
}
