// Package memory is an in-process implementation of the project, plan and
// version repositories. It enforces the same constraints as the postgres
// schema (unique project numbers, unique titles per project, unique version
// numbers per plan, cascading deletes) under one mutex.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	plandomain "github.com/planwerk/cockpit-backend/internal/plans/domain"
	projdomain "github.com/planwerk/cockpit-backend/internal/projects/domain"
)

type projectRow struct {
	project projdomain.Project
	seq     int64
}

type planRow struct {
	plan plandomain.TrackedPlan
	seq  int64
}

type Store struct {
	mu       sync.RWMutex
	seq      int64
	projects map[uuid.UUID]*projectRow
	plans    map[uuid.UUID]*planRow
	versions map[uuid.UUID]plandomain.PlanVersion
}

func New() *Store {
	return &Store{
		projects: map[uuid.UUID]*projectRow{},
		plans:    map[uuid.UUID]*planRow{},
		versions: map[uuid.UUID]plandomain.PlanVersion{},
	}
}

func (s *Store) Projects() *ProjectRepo { return &ProjectRepo{s: s} }
func (s *Store) Plans() *PlanRepo       { return &PlanRepo{s: s} }
func (s *Store) Versions() *VersionRepo { return &VersionRepo{s: s} }

func (s *Store) next() int64 {
	s.seq++
	return s.seq
}

// FilePaths returns the blob path of every stored version.
func (s *Store) FilePaths(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.versions))
	for _, v := range s.versions {
		out = append(out, v.FilePath)
	}
	sort.Strings(out)
	return out, nil
}

func cloneVersion(v plandomain.PlanVersion) plandomain.PlanVersion {
	if v.Description != nil {
		d := *v.Description
		v.Description = &d
	}
	return v
}

// sortVersionsDesc orders by version number, highest first.
func sortVersionsDesc(vs []plandomain.PlanVersion) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].VersionNumber > vs[j].VersionNumber })
}
