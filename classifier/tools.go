package classifier

import "google.golang.org/genai"

var priorityEnum = []string{"high", "medium", "low"}

// triageTools declares the three action schemas offered to the triage round.
func triageTools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        actionReply,
				Description: "Draft and send a reply to the email.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":      {Type: genai.TypeString, Description: "Short title describing the email."},
						"summary":    {Type: genai.TypeString, Description: "One-sentence summary of the email."},
						"priority":   {Type: genai.TypeString, Enum: priorityEnum},
						"reply_body": {Type: genai.TypeString, Description: "Full text of the reply to send."},
					},
					Required: []string{"title", "summary", "priority", "reply_body"},
				},
			},
			{
				Name:        actionSchedule,
				Description: "Schedule the meeting the sender is asking for.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":            {Type: genai.TypeString, Description: "Short title describing the email."},
						"summary":          {Type: genai.TypeString, Description: "One-sentence summary of the email."},
						"priority":         {Type: genai.TypeString, Enum: priorityEnum},
						"date":             {Type: genai.TypeString, Description: "Meeting date, YYYY-MM-DD."},
						"time":             {Type: genai.TypeString, Description: "Meeting start time, 24-hour HH:MM."},
						"duration_minutes": {Type: genai.TypeInteger, Description: "Meeting length in minutes."},
						"attendees": {
							Type:        genai.TypeArray,
							Items:       &genai.Schema{Type: genai.TypeString},
							Description: "Email addresses of the attendees.",
						},
					},
					Required: []string{"title", "summary", "priority", "date", "time", "duration_minutes", "attendees"},
				},
			},
			{
				Name:        actionNoop,
				Description: "The email needs no reply and no meeting.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":     {Type: genai.TypeString, Description: "Short title describing the email."},
						"summary":   {Type: genai.TypeString, Description: "One-sentence summary of the email."},
						"priority":  {Type: genai.TypeString, Enum: priorityEnum},
						"confirmed": {Type: genai.TypeBoolean, Description: "True when certain no action is needed."},
					},
					Required: []string{"title", "summary", "priority", "confirmed"},
				},
			},
		},
	}}
}

// composerTools declares the single schema the confirmation round may call.
func composerTools() []*genai.Tool {
	return []*genai.Tool{{
		FunctionDeclarations: []*genai.FunctionDeclaration{{
			Name:        actionReply,
			Description: "Send the meeting confirmation reply.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"reply_title": {Type: genai.TypeString, Description: "Subject line for the confirmation."},
					"reply_body":  {Type: genai.TypeString, Description: "Full text of the confirmation."},
				},
				Required: []string{"reply_title", "reply_body"},
			},
		}},
	}}
}
