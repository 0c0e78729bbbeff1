/*
Package dispatcher runs the key dispatch loop of the daemon.

The Engine holds a reference to the active mode, initially the root mode of
the bind tree. For each key press it finds the first matching bind in the
active mode, runs its command, and then applies its action:

  - Enter: release every chord of the active mode, make the target mode
    active, and register its chords. Re-entering the active mode does the
    same release and register.
  - Return to root: if the root mode is already active nothing happens;
    otherwise the active mode's chords are released and the root's chords
    registered.

Events that match nothing in the active mode are ignored. They do not fall
back to the root mode.

# Registration

Between events, the chords registered with the Environment are exactly the
chords of the active mode. A chord appearing more than once in a mode is
registered once and the first bind wins. A registration conflict with
another client is fatal, as is losing the event source.

# Collaborators

  - Environment: register, deregister, and wait for key events
  - CommandRunner: launch a command without waiting for it
  - Recorder: optional, receives a Trigger for every matched bind
*/
package dispatcher
