package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sbasestarter/rtm-harness/internal/defs"
	"gopkg.in/yaml.v3"
)

type Item struct {
	Key    string `yaml:"key"`
	Value  string `yaml:"value"`
	Author string `yaml:"author,omitempty"`
}

type Lock struct {
	Name  string `yaml:"name"`
	TTL   uint32 `yaml:"ttl"`
	Owner string `yaml:"owner,omitempty"`
}

type Channel struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Locks    []Lock `yaml:"locks,omitempty"`
	Metadata []Item `yaml:"metadata,omitempty"`
}

type User struct {
	UserID   string `yaml:"userId"`
	Metadata []Item `yaml:"metadata,omitempty"`
}

// Fixture seeds engine state before any session attaches.
type Fixture struct {
	Channels []Channel `yaml:"channels"`
	Users    []User    `yaml:"users"`
}

func ParseChannelType(s string) (defs.ChannelType, error) {
	switch s {
	case "", "message":
		return defs.ChannelTypeMessage, nil
	case "stream":
		return defs.ChannelTypeStream, nil
	}

	return defs.ChannelTypeNone, fmt.Errorf("unknown channel type %q", s)
}

// Parse reads a YAML fixture. The document must be a mapping and may only use known keys.
// An empty document is an empty fixture.
func Parse(data []byte) (*Fixture, error) {
	var root yaml.Node

	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrap(err, "parse fixture")
	}

	if len(root.Content) > 0 && root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.Errorf("fixture must be a mapping, got %s", root.Content[0].ShortTag())
	}

	var f Fixture

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "parse fixture")
	}

	if err := f.validate(); err != nil {
		return nil, err
	}

	return &f, nil
}

func Load(file string) (*Fixture, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.Wrap(err, "read fixture")
	}

	return Parse(data)
}

func (f *Fixture) validate() error {
	for _, channel := range f.Channels {
		if channel.Name == "" {
			return errors.New("fixture channel without name")
		}

		if _, err := ParseChannelType(channel.Type); err != nil {
			return errors.Wrapf(err, "channel %s", channel.Name)
		}

		seen := make(map[string]bool)

		for _, lock := range channel.Locks {
			if lock.Name == "" || seen[lock.Name] {
				return errors.Errorf("channel %s: invalid or duplicate lock %q", channel.Name, lock.Name)
			}

			seen[lock.Name] = true
		}
	}

	for _, u := range f.Users {
		if u.UserID == "" {
			return errors.New("fixture user without userId")
		}
	}

	return nil
}

// MetadataOf builds the stored form of seeded items: one write, major revision 1.
func MetadataOf(items []Item, ts int64) *defs.Metadata {
	if len(items) == 0 {
		return nil
	}

	metadata := &defs.Metadata{MajorRevision: 1}

	for _, item := range items {
		metadata.SetMetadataItem(defs.MetadataItem{
			Key:          item.Key,
			Value:        item.Value,
			AuthorUserID: item.Author,
			Revision:     1,
			UpdateTs:     ts,
		})
	}

	return metadata
}
