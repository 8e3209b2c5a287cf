// Package importer unpacks component archives (the LIB_xxx.zip bundles that
// part vendors distribute) into the shared library.
//
// Footprints go into a footprint sub-library chosen through a SelectFunc,
// symbols into symbols/to_sort/<library>/ for later curation, and STEP
// models into 3dmodels/. When an archive ships a model, every imported
// footprint is pointed at it through the library's path variable.
package importer
