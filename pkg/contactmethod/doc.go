// Package contactmethod manages the destinations a user can be notified on.
//
// A contact method pairs a channel ([Type]) with a destination value. Phone
// numbers are validated and normalised to E.164 with libphonenumber, email
// addresses with net/mail. New SMS, voice and email methods start pending
// until a verification code is confirmed with [Service.Verify].
//
// [Service.CreateUserContactMethod] stores a method together with its first
// notification rule. [LocalMutator] and [RemoteMutator] expose that
// operation to the create dialog, in process or over the GraphQL endpoint.
package contactmethod
