package telephony

import (
	"bytes"
	"encoding/xml"
	"errors"
)

// Minimal TwiML builder for the voice conversation loop.
// It intentionally avoids any provider SDK dependency; only the verbs the
// receptionist needs are modeled.

type twimlResponse struct {
	XMLName xml.Name `xml:"Response"`
	Verbs   []any    `xml:",any"`
}

type twimlSay struct {
	XMLName xml.Name `xml:"Say"`
	Voice   string   `xml:"voice,attr,omitempty"`
	Text    string   `xml:",chardata"`
}

type twimlGather struct {
	XMLName       xml.Name `xml:"Gather"`
	Input         string   `xml:"input,attr"`
	Action        string   `xml:"action,attr"`
	Method        string   `xml:"method,attr"`
	SpeechTimeout string   `xml:"speechTimeout,attr,omitempty"`
	Say           twimlSay `xml:"Say"`
}

type twimlRedirect struct {
	XMLName xml.Name `xml:"Redirect"`
	Method  string   `xml:"method,attr"`
	URL     string   `xml:",chardata"`
}

type twimlHangup struct {
	XMLName xml.Name `xml:"Hangup"`
}

// VoiceReply describes one spoken response.
//
// With Gather set, the prompt is wrapped in a speech <Gather> posting back
// to ActionURL. What follows the gather handles caller silence: by default
// a <Redirect> back to ActionURL re-delivers the turn (the handler then
// re-issues the prompt); with SilenceGoodbye set, silence instead falls
// through to a goodbye and a hangup, which is how "no speech twice in a
// row" terminates the call at the platform level.
type VoiceReply struct {
	Say            string
	Gather         bool
	ActionURL      string
	SilenceGoodbye string
}

// RenderVoiceTwiML maps a VoiceReply to a TwiML document.
func RenderVoiceTwiML(r VoiceReply) (string, error) {
	if r.Say == "" {
		return "", errors.New("telephony: say text required")
	}

	var doc twimlResponse
	if !r.Gather {
		doc.Verbs = append(doc.Verbs, twimlSay{Text: r.Say}, twimlHangup{})
		return encodeTwiML(doc)
	}

	if r.ActionURL == "" {
		return "", errors.New("telephony: action url required for gather")
	}
	doc.Verbs = append(doc.Verbs, twimlGather{
		Input:         "speech",
		Action:        r.ActionURL,
		Method:        "POST",
		SpeechTimeout: "auto",
		Say:           twimlSay{Text: r.Say},
	})
	if r.SilenceGoodbye != "" {
		doc.Verbs = append(doc.Verbs, twimlSay{Text: r.SilenceGoodbye}, twimlHangup{})
	} else {
		doc.Verbs = append(doc.Verbs, twimlRedirect{Method: "POST", URL: r.ActionURL})
	}
	return encodeTwiML(doc)
}

func encodeTwiML(doc twimlResponse) (string, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return "", err
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
