// Package domain defines the core entities of the chemistry lab: learner
// progress with its level-up rule, catalog entities (atoms, bonds,
// molecules, chemicals, lab tools), bench items, quiz questions, camera
// status and the top-level views. Types here carry validation but no I/O.
package domain
