package main

import (
	"io"
	"os"

	"hotel-booking/internal/domain/inventory"
	"hotel-booking/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

// seedFile is the deploy-time inventory document:
//
//	inventory:
//	  standard: 20
//	  deluxe: 10
//	  suite: 4
//	admin:
//	  email: admin@hotel.example
//	  password_env: ADMIN_PASSWORD
type seedFile struct {
	Inventory map[string]int `yaml:"inventory"`
	Admin     *adminSeed     `yaml:"admin"`
}

type adminSeed struct {
	Email       string `yaml:"email"`
	PasswordEnv string `yaml:"password_env"`
	Role        string `yaml:"role"`
}

type seed struct {
	counts   inventory.Counts
	admin    *adminSeed
	password string
}

func parseSeed(r io.Reader, lookupEnv func(string) (string, bool)) (*seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f seedFile
	if err := dec.Decode(&f); err != nil {
		return nil, errs.Wrap(err, "failed to decode seed file")
	}

	counts, err := inventory.NewCounts(f.Inventory)
	if err != nil {
		return nil, errs.Wrap(err, "invalid inventory section")
	}
	if !counts.Complete() {
		return nil, errs.New("inventory section must list standard, deluxe and suite")
	}

	s := &seed{counts: counts}
	if f.Admin == nil {
		return s, nil
	}
	if f.Admin.Role == "" {
		f.Admin.Role = "admin"
	}
	if f.Admin.PasswordEnv == "" {
		return nil, errs.New("admin.password_env is required; passwords are never read from the file")
	}
	pw, ok := lookupEnv(f.Admin.PasswordEnv)
	if !ok || pw == "" {
		return nil, errs.Newf("environment variable %s is not set", f.Admin.PasswordEnv)
	}
	s.admin = f.Admin
	s.password = pw
	return s, nil
}

func loadSeed(path string) (*seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "failed to open seed file")
	}
	defer f.Close()
	return parseSeed(f, os.LookupEnv)
}
