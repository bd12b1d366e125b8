// Package model defines the records exchanged with the bidmatch platform API.
//
// The client never holds authoritative state: every value here is a
// transient copy of what the server returned, used for display and in-place
// editing until the next fetch replaces it.
//
// # Projects
//
// A [Project] carries its location, category, lifecycle dates, status and
// attachments:
//
//	type Project struct {
//	    ID              int64
//	    City, State     string
//	    Zip             string
//	    CategoryID      int64
//	    Description     string // HTML
//	    EstimateDueDate Date
//	    StartDate       Date
//	    EndDate         Date
//	    Status          ProjectStatus
//	    Attachments     []Attachment
//	    ContactMethods  ContactMethods
//	}
//
// # Dates
//
// [Date] is a calendar date that travels as YYYY-MM-DD.
package model
