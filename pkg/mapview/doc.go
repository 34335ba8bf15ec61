// Package mapview holds the interactive state of one star map view.
//
// A [View] combines a laid-out graph with a [viewport.Controller] and the
// transient interaction state (hover, selection, search). Input arrives as
// [Event] values; [View.Handle] applies them synchronously and reports
// whether the view must be redrawn. [View.Scene] returns what to draw.
//
// The graph itself is never mutated by interaction: hover and selection
// live in [State] only.
package mapview
