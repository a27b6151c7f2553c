package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Add(ctx context.Context, paths []string) error
	Drop(ctx context.Context, paths []string) error
	Files(ctx context.Context) error
	Remove(ctx context.Context, fileID string) error
	Clear(ctx context.Context) error
	Mode(ctx context.Context, target string) error
	Toggle(ctx context.Context) error
	Compress(ctx context.Context, args []string) error
	Convert(ctx context.Context, args []string) error
	OCR(ctx context.Context, args []string) error
	Summarize(ctx context.Context, args []string) error
	Translate(ctx context.Context, args []string) error
	CloudUpload(ctx context.Context, args []string) error
	CloudDownload(ctx context.Context, args []string) error
	Jobs(ctx context.Context) error
	CancelJob(ctx context.Context, jobID string) error
	Save(ctx context.Context, args []string) error
	Token(ctx context.Context) error
	Connect(ctx context.Context, args []string) error
	Share(ctx context.Context, args []string) error
}

const helpText = `Available commands:
  add <path...>        add files (file dialog equivalent)
  drop <path...>       add files (drag-and-drop equivalent)
  files                list selected files
  remove <fileId>      remove one file
  clear                remove all files
  mode <single|batch>  switch uploader mode
  toggle               flip uploader mode
  compress [level]     compress selection (low|medium|high|maximum)
  convert <format>     convert selection (docx|xlsx|html|txt)
  ocr [lang]           recognize text in selection
  summarize            summarize selection
  translate <lang>     translate selection
  upload <provider> <path>    push selection to cloud storage
  download <provider> <path>  fetch a cloud object into the store
  jobs                 list jobs
  cancel <jobId>       cancel a running job
  save <fileId> [dir]  write a stored file to disk
  token                enter an entitlement token
  connect s3 <region> <bucket> [endpoint]  link an S3 bucket
  share <provider> <path> [minutes]        presigned download link
  exit | quit          leave the program`

// runREPL starts a simple read–eval–print loop for the PDFSmaller CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Any errors returned by command handlers are printed and the loop moves on;
// handlers never terminate the REPL. Job outcomes are not reported here — the
// renderer draws them from the bus as they happen.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pdf> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "add":
			err = a.Add(ctx, args)

		case "drop":
			err = a.Drop(ctx, args)

		case "files", "ls":
			err = a.Files(ctx)

		case "remove", "rm":
			if len(args) != 1 {
				printlnFn("Usage: remove <fileId>")
				continue
			}
			err = a.Remove(ctx, args[0])

		case "clear":
			err = a.Clear(ctx)

		case "mode":
			if len(args) != 1 {
				printlnFn("Usage: mode <single|batch>")
				continue
			}
			err = a.Mode(ctx, args[0])

		case "toggle":
			err = a.Toggle(ctx)

		case "compress":
			err = a.Compress(ctx, args)

		case "convert":
			err = a.Convert(ctx, args)

		case "ocr":
			err = a.OCR(ctx, args)

		case "summarize":
			err = a.Summarize(ctx, args)

		case "translate":
			err = a.Translate(ctx, args)

		case "upload":
			err = a.CloudUpload(ctx, args)

		case "download":
			err = a.CloudDownload(ctx, args)

		case "jobs":
			err = a.Jobs(ctx)

		case "cancel":
			if len(args) != 1 {
				printlnFn("Usage: cancel <jobId>")
				continue
			}
			err = a.CancelJob(ctx, args[0])

		case "save":
			err = a.Save(ctx, args)

		case "token":
			err = a.Token(ctx)

		case "connect":
			err = a.Connect(ctx, args)

		case "share":
			err = a.Share(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
