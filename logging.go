package resolver

import (
	"time"

	"github.com/sirupsen/logrus"
)

// defaultLogger returns a logrus logger configured the way the rest of the
// pack configures logrus (text formatter, Info by default, Warn/Debug used
// at the same call sites domainr-dnsr's fmt.Fprintf tree-drawing logger
// used — resolve start/end, CNAME hops, per-attempt exchanges — but as
// structured fields instead of indentation art).
func defaultLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	return log
}

func logResolveStart(log *logrus.Entry, fqdn string, qtype Type) {
	log.WithFields(logrus.Fields{"qname": fqdn, "qtype": qtype.String()}).Debug("resolve start")
}

func logResolveEnd(log *logrus.Entry, fqdn string, qtype Type, start time.Time, msg *Message, err error) {
	entry := log.WithFields(logrus.Fields{
		"qname":   fqdn,
		"qtype":   qtype.String(),
		"elapsed": time.Since(start),
	})
	if msg != nil {
		entry = entry.WithFields(logrus.Fields{
			"answers":   len(msg.AN),
			"authority": len(msg.NS),
			"rcode":     msg.Rcode,
		})
	}
	if err != nil {
		entry.WithError(err).Warn("resolve failed")
		return
	}
	entry.Debug("resolve end")
}

func logCNAME(log *logrus.Entry, fqdn, target string) {
	log.WithFields(logrus.Fields{"qname": fqdn, "cname": target}).Debug("CNAME hop")
}

func logExchange(log *logrus.Entry, server, fqdn string, qtype Type, start time.Time, err error) {
	entry := log.WithFields(logrus.Fields{
		"server":  server,
		"qname":   fqdn,
		"qtype":   qtype.String(),
		"elapsed": time.Since(start),
	})
	if err != nil {
		entry.WithError(err).Debug("exchange failed")
		return
	}
	entry.Debug("exchange ok")
}

func logMaxRecursion(log *logrus.Entry, fqdn string, qtype Type) {
	log.WithFields(logrus.Fields{"qname": fqdn, "qtype": qtype.String()}).Warn("max CNAME recursion exceeded")
}
