// Package integrity finds class sections and students whose references no
// longer resolve, and prunes them on request.
//
// Only structural references are checked: section to subject, section to
// teacher, and student to section. Grade and attendance subject ids are
// not checked; aggregates over an unknown subject are simply empty.
package integrity

import (
	"fmt"

	"github.com/roach88/gradebook/internal/model"
)

// Problem describes one dangling reference.
type Problem struct {
	// Kind and ID identify the entity holding the reference.
	Kind string `json:"kind"`
	ID   string `json:"id"`
	Name string `json:"name"`

	// Reference is the kind of the missing target and Missing its id.
	Reference string `json:"reference"`
	Missing   string `json:"missing"`

	Message string `json:"message"`
}

// Report is the result of Check. Valid is true iff Problems is empty.
type Report struct {
	Valid    bool      `json:"valid"`
	Problems []Problem `json:"problems"`
}

// Messages returns the human-readable problem descriptions in order.
func (r Report) Messages() []string {
	out := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		out[i] = p.Message
	}
	return out
}

// Check scans snap without modifying it. Problems are ordered: every
// section's subject, then every section's teacher, then every student's
// section.
func Check(snap model.Snapshot) Report {
	idx := newIndex(snap)
	problems := []Problem{}

	for _, c := range snap.ClassSections {
		if !idx.subjects[c.SubjectID] {
			problems = append(problems, dangling(model.KindClassSection, c.ID, c.Name, model.KindSubject, c.SubjectID))
		}
	}
	for _, c := range snap.ClassSections {
		if !idx.teachers[c.TeacherID] {
			problems = append(problems, dangling(model.KindClassSection, c.ID, c.Name, model.KindTeacher, c.TeacherID))
		}
	}
	for _, st := range snap.Students {
		if st.ClassSectionID != "" && !idx.sections[st.ClassSectionID] {
			problems = append(problems, dangling(model.KindStudent, st.ID, st.Name, model.KindClassSection, st.ClassSectionID))
		}
	}

	return Report{Valid: len(problems) == 0, Problems: problems}
}

// Prune removes every student whose section does not resolve, then every
// section whose subject or teacher does not resolve, and returns how many
// records it removed.
//
// The student pass sees the sections as they were before this call, so a
// student whose section is pruned here survives until the next call.
func Prune(snap *model.Snapshot) int {
	idx := newIndex(*snap)
	removed := 0

	students := make([]model.Student, 0, len(snap.Students))
	for _, st := range snap.Students {
		if st.ClassSectionID != "" && !idx.sections[st.ClassSectionID] {
			removed++
			continue
		}
		students = append(students, st)
	}
	snap.Students = students

	sections := make([]model.ClassSection, 0, len(snap.ClassSections))
	for _, c := range snap.ClassSections {
		if !idx.subjects[c.SubjectID] || !idx.teachers[c.TeacherID] {
			removed++
			continue
		}
		sections = append(sections, c)
	}
	snap.ClassSections = sections

	return removed
}

type index struct {
	subjects map[string]bool
	teachers map[string]bool
	sections map[string]bool
}

func newIndex(snap model.Snapshot) index {
	idx := index{
		subjects: make(map[string]bool, len(snap.Subjects)),
		teachers: make(map[string]bool, len(snap.Teachers)),
		sections: make(map[string]bool, len(snap.ClassSections)),
	}
	for _, v := range snap.Subjects {
		idx.subjects[v.ID] = true
	}
	for _, v := range snap.Teachers {
		idx.teachers[v.ID] = true
	}
	for _, v := range snap.ClassSections {
		idx.sections[v.ID] = true
	}
	return idx
}

func dangling(kind, id, name, ref, missing string) Problem {
	return Problem{
		Kind:      kind,
		ID:        id,
		Name:      name,
		Reference: ref,
		Missing:   missing,
		Message:   fmt.Sprintf("%s %q references missing %s %q", kind, name, ref, missing),
	}
}
