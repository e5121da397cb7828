package config

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
)

// ServiceRegistry reads connection profiles from a pg_service.conf style file.
type ServiceRegistry interface {
	GetProfiles(ctx context.Context) ([]string, error)
	DSN(ctx context.Context, service string) (string, error)
}

type serviceRegistry struct {
	cfg *ini.File
}

// NewServiceRegistry loads the service file at path. An empty path uses PGSERVICEFILE, then
// ~/.pg_service.conf.
func NewServiceRegistry(path string) (ServiceRegistry, error) {
	if path == "" {
		path = os.Getenv("PGSERVICEFILE")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		path = filepath.Join(home, ".pg_service.conf")
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &serviceRegistry{cfg: cfg}, nil
}

func (sr *serviceRegistry) GetProfiles(_ context.Context) ([]string, error) {
	var profiles []string
	for _, section := range sr.cfg.Sections() {
		if len(section.Keys()) > 0 {
			profiles = append(profiles, section.Name())
		}
	}
	return profiles, nil
}

// DSN builds a postgres URL from the named service section.
func (sr *serviceRegistry) DSN(_ context.Context, service string) (string, error) {
	section, err := sr.cfg.GetSection(service)
	if err != nil || len(section.Keys()) == 0 {
		return "", fmt.Errorf("service %s not found", service)
	}

	host := section.Key("host").MustString("localhost")
	port := section.Key("port").MustString("5432")
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, port),
		Path:   "/" + section.Key("dbname").String(),
	}

	user := section.Key("user").String()
	password := section.Key("password").String()
	switch {
	case user != "" && password != "":
		u.User = url.UserPassword(user, password)
	case user != "":
		u.User = url.User(user)
	}

	query := url.Values{}
	if mode := section.Key("sslmode").String(); mode != "" {
		query.Set("sslmode", mode)
	}
	if timeout := section.Key("connect_timeout").String(); timeout != "" {
		query.Set("connect_timeout", timeout)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
