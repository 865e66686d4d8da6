// Package profile groups the settings stored under one profile key and
// applies or restores them as a unit.
//
//	p := profile.New(provider.Store(key), nil)
//	result := p.Apply(env)
//	if !result.Success {
//	    return result.Error
//	}
//
// Profiles are rebuilt from their preference store on every use and never
// persist themselves.
package profile
