// internal/engine/workflow/machine.go
package workflow

import "staffing-engine/internal/models"

// The two lifecycles are explicit transition tables rather than ad hoc
// status strings, so every possible (from, to) pair is validated against an
// exhaustive map and an illegal transition can never slip through as a
// silent status write.

var applicationTransitions = map[models.ApplicationStatus]map[models.ApplicationStatus]bool{
	models.ApplicationPending: {
		models.ApplicationReviewed: true,
		models.ApplicationRejected: true,
	},
	models.ApplicationReviewed: {
		models.ApplicationInterviewScheduled: true,
		models.ApplicationRejected:           true,
	},
	models.ApplicationInterviewScheduled: {
		models.ApplicationAccepted: true,
		models.ApplicationRejected: true,
	},
	models.ApplicationAccepted: {},
	models.ApplicationRejected: {},
}

var presentationTransitions = map[models.PresentationStatus]map[models.PresentationStatus]bool{
	models.PresentationSent: {
		models.PresentationOpened:    true,
		models.PresentationResponded: true,
		models.PresentationExpired:   true,
	},
	models.PresentationOpened: {
		models.PresentationResponded: true,
		models.PresentationExpired:   true,
	},
	models.PresentationResponded: {},
	models.PresentationExpired:   {},
}

// CanTransitionApplication reports whether from -> to is a legal
// application transition.
func CanTransitionApplication(from, to models.ApplicationStatus) bool {
	return applicationTransitions[from][to]
}

// CanTransitionPresentation reports whether from -> to is a legal
// presentation transition.
func CanTransitionPresentation(from, to models.PresentationStatus) bool {
	return presentationTransitions[from][to]
}
