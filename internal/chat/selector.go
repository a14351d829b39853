package chat

// ReferencePredicate decides whether an attachment can steer a generation
// job. The carrying message is provided so predicates can filter on role.
type ReferencePredicate func(msg *Message, att *Attachment) bool

// SelectReference scans the history in reverse chronological order and
// returns the most recent attachment satisfying the predicate, or nil. A
// nil predicate accepts any attachment.
func SelectReference(messages []Message, match ReferencePredicate) *Attachment {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := &messages[i]
		if msg.Attachment == nil {
			continue
		}
		if match == nil || match(msg, msg.Attachment) {
			return msg.Attachment
		}
	}
	return nil
}

// UserImage matches images supplied by the user, the usual reference for
// image-to-video generation.
func UserImage(msg *Message, att *Attachment) bool {
	return msg.Role == RoleUser && att.Kind == AttachmentImage
}

// UserMedia matches any user-supplied attachment.
func UserMedia(msg *Message, att *Attachment) bool {
	return msg.Role == RoleUser
}
