package archive

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// rarProbeTimeout bounds how long the external tool's entry listing
// (`l -slt`) may run before it is killed.
const rarProbeTimeout = 5 * time.Second

// rarTool locates 7z (preferred, structured -slt listing) or unrar on PATH.
// Returns "" if neither is present. The listing and extraction commands use
// 7z's syntax (`l -slt`, `x -so`) whichever tool is found; unrar does not
// accept those switches, so with only unrar present opening a RAR archive
// fails with a ReadError.
func rarTool() string {
	for _, name := range []string{"7z", "7za", "unrar"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	return ""
}

type rarEntryMeta struct {
	path     string
	size     int64
	modified time.Time
}

type rarReader struct {
	tool    string
	path    string
	entries []rarEntryMeta
	pos     int
}

func openRar(path string) (Reader, error) {
	tool := rarTool()
	if tool == "" {
		return nil, &UnsupportedError{Format: FormatRar, Reason: "no unrar/7z binary found on PATH"}
	}

	entries, err := listRarEntries(tool, path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	return &rarReader{tool: tool, path: path, entries: entries}, nil
}

// listRarEntries shells out to `7z l -slt` and parses its "key = value"
// block format, one block per archive member.
func listRarEntries(tool, archivePath string) ([]rarEntryMeta, error) {
	ctx, cancel := context.WithTimeout(context.Background(), rarProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, tool, "l", "-slt", archivePath)
	out, err := cmd.Output()
	if err != nil {
		return nil, err
	}

	var entries []rarEntryMeta
	var cur rarEntryMeta
	var isDir bool
	have := false

	flush := func() {
		if have && !isDir && cur.path != "" && cur.size > 0 {
			entries = append(entries, cur)
		}
		cur = rarEntryMeta{}
		isDir = false
		have = false
	}

	scanner := bufio.NewScanner(strings.NewReader(string(out)))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			continue
		}
		switch key {
		case "Path":
			cur.path = value
			have = true
		case "Size":
			if n, err := strconv.ParseInt(value, 10, 64); err == nil {
				cur.size = n
			}
		case "Modified":
			if t, err := time.Parse("2006-01-02 15:04:05", value); err == nil {
				cur.modified = t
			}
		case "Attributes":
			isDir = strings.Contains(value, "D")
		}
	}
	flush()

	return entries, scanner.Err()
}

func (r *rarReader) Next() (*Entry, error) {
	if r.pos >= len(r.entries) {
		return nil, io.EOF
	}
	meta := r.entries[r.pos]
	r.pos++

	tool, archivePath := r.tool, r.path
	return &Entry{
		InternalPath: meta.path,
		Size:         meta.size,
		Modified:     meta.modified,
		openFn: func() (io.ReadCloser, error) {
			return openRarEntryStream(tool, archivePath, meta.path)
		},
	}, nil
}

func (r *rarReader) Close() error { return nil }

// openRarEntryStream extracts one archive member to stdout without
// unpacking the whole archive, using `7z x -so`.
func openRarEntryStream(tool, archivePath, internalPath string) (io.ReadCloser, error) {
	cmd := exec.Command(tool, "x", "-so", archivePath, internalPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &rarEntryStream{ReadCloser: stdout, cmd: cmd}, nil
}

// rarEntryStream waits for the extraction process on Close so no zombie
// processes accumulate across many archive entries.
type rarEntryStream struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (s *rarEntryStream) Close() error {
	_ = s.ReadCloser.Close()
	return s.cmd.Wait()
}
