// Package cli hosts the interactive PDFSmaller client: a read–eval–print
// loop whose panels publish ServiceStartRequest events and render the job
// event stream coming back over the bus. Panels never call services or the
// FileStore's owners directly; the uploader widget handles intake and the
// mediator handles everything else.
package cli
