/*
Package bridge contains Bridge contract which holds GAS locked for transfer to
other chains and releases it back on the oracle's instruction.

Bridge contract is driven by GAS transfers only. Data of the transfer is a
message with the operation code and request ID, see OnNEP17Payment for the
layout. Users lock GAS by transferring it with Lock message, an off-chain
relayer watches Lock notifications and credits the equivalent amount on the
destination chain. The oracle sends Unlock message (usually along with a
small amount of GAS) to move locked GAS to the specified account.

The oracle is set once at deployment and can't be changed. The contract may be
configured to keep a minimal reserve which Unlock never touches.

# Contract notifications

Lock notification. This notification is produced when GAS is locked for the
transfer to another chain.

	Lock:
	  - name: record
	    type: ByteArray

Record is 61 bytes long: 20-byte destination address, 1-byte destination chain
ID, 32-byte sender (Neo script hash in big-endian byte order, padded with
leading zeros) and 8-byte big-endian amount of locked GAS.

Unlock notification. This notification is produced when the oracle releases
GAS.

	Unlock:
	  - name: requestID
	    type: ByteArray
	  - name: destination
	    type: Hash160
	  - name: amount
	    type: Integer
*/
package bridge
