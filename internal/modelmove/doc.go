// Package modelmove relocates 3D model files referenced by footprints and
// rewrites the references to match.
//
// A footprint line such as
//
//	(model ${VIKINGSX}/3D/Connectors/TSW-104.stp
//
// becomes
//
//	(model ${VIKINGS}/3dmodels/TSW-104.stp
//
// and the file moves from <OldRoot>/Connectors/TSW-104.stp to
// <NewRoot>/TSW-104.stp.
package modelmove
