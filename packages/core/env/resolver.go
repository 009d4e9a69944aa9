package env

import (
	"os"
	"regexp"
	"sync"
)

// pip only expands upper case names with digits and underscores
var variablePattern = regexp.MustCompile(`\$\{([A-Z0-9_]+)\}`)

// Resolver expands ${VAR} references. Variables set on the resolver take
// precedence over the process environment. Unset references are left as
// written. A Resolver is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]string
	lookupEnv func(string) (string, bool)
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		lookupEnv: os.LookupEnv,
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

func (r *Resolver) GetVariable(name string) (string, bool) {
	r.mu.RLock()
	v, ok := r.variables[name]
	lookup := r.lookupEnv
	r.mu.RUnlock()
	if ok {
		return v, true
	}
	if lookup != nil {
		return lookup(name)
	}
	return "", false
}

func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[2 : len(match)-1]
		if val, ok := r.GetVariable(name); ok {
			return val
		}
		return match
	})
}

// GetUnresolvedVariables returns the names of unset references in input, in
// order of appearance.
func (r *Resolver) GetUnresolvedVariables(input string) []string {
	var missing []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		if _, ok := r.GetVariable(m[1]); !ok {
			missing = append(missing, m[1])
		}
	}
	return missing
}
