package oracle

import (
	"fmt"
	"github.com/OccupiedPorcupine/beat-your-meet/pkg/agenda"
)

const noTranscript = "(nothing was said)"

func orNoTranscript(v string) string {
	if v == "" {
		return noTranscript
	}
	return v
}

func tangentPrompt(req TangentRequest) string {
	return fmt.Sprintf(`Decide whether the latest part of a meeting conversation still belongs to the agenda item being discussed.

Agenda item: %[1]s
Description: %[2]s

Transcript of the last minute:
%[3]s

Answer with the assess_conversation tool.

Not a tangent: an anecdote that supports a point about %[1]q, a short clarifying question, a one sentence joke.
A tangent: a longer discussion of an unrelated subject, private side talk, going back to an item that is already done.

If the conversation left the item, spoken_response must be short and firm. Say what is wrong and what happens next, for example "Beat here, we are off track. Back to %[1]s." Never hedge.`,
		req.Topic, req.Description, orNoTranscript(req.RecentTranscript))
}

func summaryPrompt(req SummaryRequest) string {
	return fmt.Sprintf(`Summarise the transcript of an agenda item that was just completed.

Agenda item: %s
Description: %s

Transcript:
%s

Answer with the record_item_summary tool. One sentence per entry.`,
		req.Item.Topic, req.Item.Description, orNoTranscript(req.Transcript))
}

func answerSystemPrompt(q Question) string {
	var situation string
	if q.Style == agenda.StyleChatting || !q.Status.HasCurrentItem() {
		situation = fmt.Sprintf("Meeting style: %v. There is no active agenda item.", q.Style)
	} else {
		situation = fmt.Sprintf("Meeting style: %v. Current agenda item: %q, %.1f of %g minutes used. Meeting running for %.1f minutes.",
			q.Style, q.Status.CurrentTopic, q.Status.CurrentElapsedMinutes, q.Status.CurrentAllocatedMinutes, q.Status.TotalMeetingMinutes)
	}
	result := `You are Beat, the facilitator of a live voice meeting. Somebody asked you something directly. ` +
		situation + ` Answer in one or two short sentences of plain text; it will be read out loud.`
	if q.MemoryContext != "" {
		result += "\n\nNotes of the completed agenda items:\n" + q.MemoryContext
	}
	return result
}

func answerUserPrompt(q Question) string {
	if q.Text == "" {
		return "You were mentioned."
	}
	if q.Asker != "" {
		return q.Asker + ": " + q.Text
	}
	return q.Text
}

const assessConversationTool = `{
  "type": "function",
  "function": {
    "name": "assess_conversation",
    "description": "Assess whether the conversation still belongs to the current agenda item",
    "parameters": {
      "type": "object",
      "properties": {
        "status": {
          "type": "string",
          "enum": ["on_topic", "drifting", "off_topic", "time_warning"],
          "description": "State of the conversation"
        },
        "confidence": {
          "type": "number",
          "description": "Confidence of the assessment between 0.0 and 1.0"
        },
        "should_speak": {
          "type": "boolean",
          "description": "Whether the facilitator should speak up"
        },
        "spoken_response": {
          "type": "string",
          "description": "What to say if should_speak is true, at most two sentences"
        }
      },
      "required": ["status", "confidence", "should_speak"]
    }
  }
}`

const recordItemSummaryTool = `{
  "type": "function",
  "function": {
    "name": "record_item_summary",
    "description": "Record the structured summary of a completed agenda item",
    "parameters": {
      "type": "object",
      "properties": {
        "key_points": {
          "type": "array",
          "items": {"type": "string"},
          "description": "Main points, at most four, one sentence each"
        },
        "decisions": {
          "type": "array",
          "items": {"type": "string"},
          "description": "Decisions which were made"
        },
        "action_items": {
          "type": "array",
          "items": {"type": "string"},
          "description": "Tasks somebody committed to, with the owner if mentioned"
        }
      },
      "required": ["key_points", "decisions", "action_items"]
    }
  }
}`
