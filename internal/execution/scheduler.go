package execution

import (
	"path/filepath"
	"strings"

	"ptc/internal/domain"
)

// Scheduler groups test items into jobs
type Scheduler interface {
	Schedule(items []domain.TestItem) []domain.TestJob
}

// FileScheduler creates one job per test file, in order of first appearance
type FileScheduler struct{}

// NewFileScheduler creates a new FileScheduler
func NewFileScheduler() *FileScheduler {
	return &FileScheduler{}
}

// Schedule groups items by file. Each job lists the node ids of its items.
func (s *FileScheduler) Schedule(items []domain.TestItem) []domain.TestJob {
	var jobs []domain.TestJob
	index := make(map[string]int)

	for _, item := range items {
		i, ok := index[item.Path]
		if !ok {
			i = len(jobs)
			index[item.Path] = i
			jobs = append(jobs, domain.TestJob{File: item.Path})
		}
		jobs[i].NodeIDs = append(jobs[i].NodeIDs, item.NodeID())
	}

	return jobs
}

// FileJobs creates whole-file jobs with paths relative to projectRoot
func FileJobs(projectRoot string, files []string) []domain.TestJob {
	jobs := make([]domain.TestJob, 0, len(files))
	for _, file := range files {
		if rel, err := filepath.Rel(projectRoot, file); err == nil {
			file = rel
		}
		jobs = append(jobs, domain.TestJob{File: filepath.ToSlash(file)})
	}
	return jobs
}

// NodeIDJobs groups pytest node ids by their file into jobs, in order of first appearance
func NodeIDJobs(nodeIDs []string) []domain.TestJob {
	var jobs []domain.TestJob
	index := make(map[string]int)

	for _, id := range nodeIDs {
		file, _, _ := strings.Cut(id, "::")
		i, ok := index[file]
		if !ok {
			i = len(jobs)
			index[file] = i
			jobs = append(jobs, domain.TestJob{File: file})
		}
		if file != id {
			jobs[i].NodeIDs = append(jobs[i].NodeIDs, id)
		}
	}

	return jobs
}
