// Arbitrarily encode and decode of message body content.
/*
Smiletool's goal is to make a single interface specification for any given content
type, so that content can be determined and decoded dynamically based on message
headers or mimetype sniffing so mimetype-specific methods do not have to be explicitly
called by the developer when decoding content.

Specific objectives

1. Clients can send arbitrary object serializations and request back whichever encoding
type they are most comfortable with, including the compact smile binary family.

2. Service developers do not have to explicitly add support for encoding types to a
given service or handler. Support for a mimetype should be able to be added once to
a shared library and gotten for free by an entire ecosystem.

3. Mapper configuration stays in one place. The smile encoder resolves its mapper per
payload through the provider package, so however a host configures mappers
(explicitly, through a registry, or not at all) the engine picks the right one.

4. Developers can easily extend all of their services to support a new content type
by creating their own encoders.
*/
package encoding
