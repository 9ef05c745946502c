// Package model provides the entity types, dataset snapshot and aggregation
// engine for gradebook.
//
// This package holds types and pure functions only. All other internal
// packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Person fields are shared by value (Student and Teacher embed Person)
//   - Grades and attendance live inside the owning Student only
//   - All JSON tags use camelCase to match the persisted layout
//   - Reported numbers are rounded to two decimals before any comparison
package model
