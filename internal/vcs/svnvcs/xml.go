package svnvcs

import (
	"encoding/xml"
	"fmt"
	"time"
)

type infoXML struct {
	Entries []infoEntry `xml:"entry"`
}

type infoEntry struct {
	Kind     string     `xml:"kind,attr"`
	Path     string     `xml:"path,attr"`
	Revision int64      `xml:"revision,attr"`
	URL      string     `xml:"url"`
	Root     string     `xml:"repository>root"`
	Commit   commitElem `xml:"commit"`
}

type commitElem struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
}

type logXML struct {
	Entries []logEntry `xml:"logentry"`
}

type logEntry struct {
	Revision int64  `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Msg      string `xml:"msg"`
}

type listsXML struct {
	Lists []listXML `xml:"list"`
}

type listXML struct {
	Path    string      `xml:"path,attr"`
	Entries []listEntry `xml:"entry"`
}

type listEntry struct {
	Kind   string     `xml:"kind,attr"`
	Name   string     `xml:"name"`
	Commit commitElem `xml:"commit"`
}

func parseInfo(data []byte) (infoEntry, error) {
	var info infoXML
	if err := xml.Unmarshal(data, &info); err != nil {
		return infoEntry{}, fmt.Errorf("parse svn info: %w", err)
	}
	if len(info.Entries) == 0 {
		return infoEntry{}, fmt.Errorf("parse svn info: no entry")
	}
	return info.Entries[0], nil
}

func parseLog(data []byte) ([]logEntry, error) {
	var log logXML
	if err := xml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("parse svn log: %w", err)
	}
	return log.Entries, nil
}

func parseList(data []byte) ([]listEntry, error) {
	var lists listsXML
	if err := xml.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("parse svn list: %w", err)
	}
	var entries []listEntry
	for _, l := range lists.Lists {
		entries = append(entries, l.Entries...)
	}
	return entries, nil
}

// parseDate reads the UTC timestamps svn writes in xml output.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse svn date %q: %w", s, err)
	}
	return t, nil
}
