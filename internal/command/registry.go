package command

import (
	"errors"
	"sort"
)

var ErrUnknownCommand = errors.New("unknown command")

// Registry maps a command name to its service.
type Registry struct {
	services map[string]Service
}

func NewRegistry() *Registry {
	return &Registry{
		services: map[string]Service{},
	}
}

func (r *Registry) Register(name string, service Service) *Registry {
	r.services[name] = service

	return r
}

func (r *Registry) Lookup(name string) (Service, bool) {
	ret, ok := r.services[name]

	return ret, ok
}

func (r *Registry) Names() []string {
	ret := make([]string, 0, len(r.services))

	for name := range r.services {
		ret = append(ret, name)
	}

	sort.Strings(ret)

	return ret
}
